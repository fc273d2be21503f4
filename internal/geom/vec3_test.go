package geom

import (
	"math"
	"testing"
)

const tolerance = 1e-12

func TestVec3Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(-2, 0.5, 4)

	if got := a.Add(b); got != NewVec3(-1, 2.5, 7) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != NewVec3(3, 1.5, -1) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); got != -1+1+12 {
		t.Errorf("Dot = %v", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	if got := x.Cross(y); got != NewVec3(0, 0, 1) {
		t.Errorf("x cross y = %v, want z", got)
	}
	if got := y.Cross(x); got != NewVec3(0, 0, -1) {
		t.Errorf("y cross x = %v, want -z", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0)
	unit, ok := v.Normalize()
	if !ok {
		t.Fatal("normalize of non-zero vector failed")
	}
	if math.Abs(unit.Length()-1) > tolerance {
		t.Errorf("unit length = %v", unit.Length())
	}
	if math.Abs(unit.X-0.6) > tolerance || math.Abs(unit.Y-0.8) > tolerance {
		t.Errorf("unit = %v", unit)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if _, ok := (Vec3{}).Normalize(); ok {
		t.Error("normalize of zero vector should report failure")
	}
}

func TestVec3IsValid(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"finite", NewVec3(1, -2, 3), true},
		{"nan", NewVec3(math.NaN(), 0, 0), false},
		{"inf", NewVec3(0, math.Inf(1), 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
