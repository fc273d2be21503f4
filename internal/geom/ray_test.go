package geom

import (
	"math"
	"testing"
)

func TestNewRayNormalizesDirection(t *testing.T) {
	r, err := NewRay(NewVec3(1, 1, 1), NewVec3(0, 0, 5))
	if err != nil {
		t.Fatalf("NewRay failed: %v", err)
	}
	if r.Direction != NewVec3(0, 0, 1) {
		t.Errorf("direction = %v, want unit z", r.Direction)
	}
}

func TestNewRayZeroDirection(t *testing.T) {
	if _, err := NewRay(NewVec3(0, 0, 0), Vec3{}); err == nil {
		t.Error("expected error for zero-length direction")
	}
}

func TestRayAt(t *testing.T) {
	r, err := NewRay(NewVec3(1, 0, -1), NewVec3(0, 0, 2))
	if err != nil {
		t.Fatalf("NewRay failed: %v", err)
	}
	p := r.At(3)
	if math.Abs(p.X-1) > tolerance || math.Abs(p.Y) > tolerance || math.Abs(p.Z-2) > tolerance {
		t.Errorf("At(3) = %v, want (1, 0, 2)", p)
	}
}
