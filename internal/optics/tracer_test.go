package optics

import (
	"math"
	"testing"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
)

func TestReflectLaw(t *testing.T) {
	tests := []struct {
		name string
		d, n geom.Vec3
	}{
		{"normal incidence", geom.NewVec3(0, 0, 1), geom.NewVec3(0, 0, 1)},
		{"45 degrees", geom.NewVec3(1, 0, -1), geom.NewVec3(0, 0, 1)},
		{"oblique", geom.NewVec3(0.3, -0.2, 1), geom.NewVec3(0.1, 0.2, 1)},
		{"grazing", geom.NewVec3(1, 0, -0.01), geom.NewVec3(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := tt.d.Normalize()
			n, _ := tt.n.Normalize()
			r := Reflect(d, n)

			if math.Abs(r.Length()-1) > tolerance {
				t.Errorf("reflected length = %v, want 1", r.Length())
			}
			// Specular symmetry: the normal component flips sign.
			if math.Abs(r.Dot(n)+d.Dot(n)) > tolerance {
				t.Errorf("r·n = %v, want %v", r.Dot(n), -d.Dot(n))
			}
			// The tangential component is unchanged.
			tangent := d.Sub(n.Scale(d.Dot(n)))
			rTangent := r.Sub(n.Scale(r.Dot(n)))
			if tangent.Sub(rTangent).Length() > tolerance {
				t.Errorf("tangential component changed: %v vs %v", tangent, rTangent)
			}
		})
	}
}

// A beam straight down the axis reflecting off a tilted normal
// n = (sin θ, 0, cos θ) leaves as (-sin 2θ, 0, -cos 2θ) and lands on a plane
// one unit below the hit point at x = -tan 2θ.
func TestTiltedNormalDetectorIntersection(t *testing.T) {
	theta := 0.1
	n := geom.NewVec3(math.Sin(theta), 0, math.Cos(theta))
	d := geom.NewVec3(0, 0, 1)

	r := Reflect(d, n)
	want := geom.NewVec3(-math.Sin(2*theta), 0, -math.Cos(2*theta))
	if r.Sub(want).Length() > tolerance {
		t.Fatalf("reflected = %v, want %v", r, want)
	}

	det, err := NewDetector(geom.NewVec3(0, 0, -1), geom.NewVec3(0, 0, 1), 2)
	if err != nil {
		t.Fatalf("building detector: %v", err)
	}
	reflected := geom.Ray{Origin: geom.NewVec3(0, 0, 0), Direction: r}
	hit, ok := det.Intersect(reflected)
	if !ok {
		t.Fatal("expected detector hit")
	}
	wantHit := geom.NewVec3(-math.Tan(2*theta), 0, -1)
	if hit.Sub(wantHit).Length() > tolerance {
		t.Errorf("detector hit = %v, want %v", hit, wantHit)
	}
}

func TestTraceToDetector(t *testing.T) {
	m, err := NewMirror(3, 3, 0.5)
	if err != nil {
		t.Fatalf("building mirror: %v", err)
	}
	det, err := NewDetector(geom.NewVec3(0, 0, -1), geom.NewVec3(0, 0, 1), 2)
	if err != nil {
		t.Fatalf("building detector: %v", err)
	}

	ray := mustRay(t, geom.NewVec3(0, 0, -2), geom.NewVec3(0, 0, 1))
	mirrorHit, reflected, detectorHit, ok := TraceToDetector(ray, m, det)
	if !ok {
		t.Fatal("expected full trace on flat mirror")
	}
	if mirrorHit.Length() > tolerance {
		t.Errorf("mirror hit = %v, want origin", mirrorHit)
	}
	if reflected.Direction.Sub(geom.NewVec3(0, 0, -1)).Length() > tolerance {
		t.Errorf("reflected direction = %v, want -z", reflected.Direction)
	}
	if detectorHit.Sub(geom.NewVec3(0, 0, -1)).Length() > tolerance {
		t.Errorf("detector hit = %v, want detector center", detectorHit)
	}
}

func TestTraceToDetectorMiss(t *testing.T) {
	m, err := NewMirror(3, 3, 0.5)
	if err != nil {
		t.Fatalf("building mirror: %v", err)
	}
	det, err := NewDetector(geom.NewVec3(0, 0, -1), geom.NewVec3(0, 0, 1), 2)
	if err != nil {
		t.Fatalf("building detector: %v", err)
	}

	ray := mustRay(t, geom.NewVec3(50, 0, -2), geom.NewVec3(0, 0, 1))
	if _, _, _, ok := TraceToDetector(ray, m, det); ok {
		t.Error("beam missing the mirror should not reach the detector")
	}
}
