package sensor

import (
	"testing"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/optics"
)

const tolerance = 1e-9

func testBench(t *testing.T) (*optics.Mirror, *optics.Detector, geom.Ray) {
	t.Helper()
	m, err := optics.NewMirror(3, 3, 0.5)
	if err != nil {
		t.Fatalf("building mirror: %v", err)
	}
	det, err := optics.NewDetector(geom.NewVec3(0, 0, -1), geom.NewVec3(0, 0, 1), 2)
	if err != nil {
		t.Fatalf("building detector: %v", err)
	}
	beam, err := geom.NewRay(geom.NewVec3(0, 0, -2), geom.NewVec3(0, 0, 1))
	if err != nil {
		t.Fatalf("building beam: %v", err)
	}
	return m, det, beam
}

func TestMeasureZeroOnAlignedFlatMirror(t *testing.T) {
	m, det, beam := testBench(t)
	s, err := NewAligned(det, m, beam)
	if err != nil {
		t.Fatalf("aligning sensor: %v", err)
	}

	w, ok := s.Measure(beam, m)
	if !ok {
		t.Fatal("expected a measurement")
	}
	if w.Length() > tolerance {
		t.Errorf("wavefront on aligned flat mirror = %v, want zero", w)
	}
}

func TestMeasureDisplacementAfterDeformation(t *testing.T) {
	m, det, beam := testBench(t)
	s, err := NewAligned(det, m, beam)
	if err != nil {
		t.Fatalf("aligning sensor: %v", err)
	}

	if err := m.ApplyDeformation(func(x, y float64) float64 { return 0.01 * x }); err != nil {
		t.Fatalf("apply deformation: %v", err)
	}

	w, ok := s.Measure(beam, m)
	if !ok {
		t.Fatal("expected a measurement")
	}
	// Raising the surface toward +x leans the normal toward -x, which
	// pushes the reflected spot toward +x.
	if w.X <= 0 {
		t.Errorf("wavefront x = %v, want positive displacement", w.X)
	}
	if w.Length() < 1e-6 {
		t.Errorf("wavefront = %v, expected a measurable displacement", w)
	}
}

func TestMeasureMiss(t *testing.T) {
	m, det, _ := testBench(t)
	s, err := New(det, geom.NewVec3(0, 0, -1))
	if err != nil {
		t.Fatalf("building sensor: %v", err)
	}

	off, err := geom.NewRay(geom.NewVec3(50, 0, -2), geom.NewVec3(0, 0, 1))
	if err != nil {
		t.Fatalf("building ray: %v", err)
	}
	if _, ok := s.Measure(off, m); ok {
		t.Error("expected no measurement for a beam missing the mirror")
	}
}

func TestMeasureIsPure(t *testing.T) {
	m, det, beam := testBench(t)
	s, err := NewAligned(det, m, beam)
	if err != nil {
		t.Fatalf("aligning sensor: %v", err)
	}

	before := m.Actuators()
	if _, ok := s.Measure(beam, m); !ok {
		t.Fatal("expected a measurement")
	}
	for i, a := range m.Actuators() {
		if a.Height != before[i].Height {
			t.Errorf("actuator %d mutated by measurement", i)
		}
	}
}

func TestNewAlignedFailsWhenBeamMisses(t *testing.T) {
	m, det, _ := testBench(t)
	off, err := geom.NewRay(geom.NewVec3(50, 0, -2), geom.NewVec3(0, 0, 1))
	if err != nil {
		t.Fatalf("building ray: %v", err)
	}
	if _, err := NewAligned(det, m, off); err == nil {
		t.Error("expected alignment failure for a beam that misses")
	}
}
