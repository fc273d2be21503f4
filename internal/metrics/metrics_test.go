package metrics

import (
	"math"
	"testing"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
)

func state(step int, errVec geom.Vec3, maxAdj float64) calib.State {
	return calib.State{
		Step:          step,
		Error:         errVec,
		MaxAdjustment: maxAdj,
	}
}

func TestResidual(t *testing.T) {
	r := NewResidual()
	if r.Value() != 0 {
		t.Errorf("empty residual = %v, want 0", r.Value())
	}

	r.Observe(state(1, geom.NewVec3(3, 4, 0), 0)) // norm 5
	r.Observe(state(2, geom.NewVec3(0, 0, 1), 0)) // norm 1

	want := math.Sqrt((25.0 + 1.0) / 2.0)
	if math.Abs(r.Value()-want) > 1e-12 {
		t.Errorf("rms = %v, want %v", r.Value(), want)
	}

	r.Reset()
	if r.Value() != 0 {
		t.Errorf("residual after reset = %v, want 0", r.Value())
	}
}

func TestStroke(t *testing.T) {
	s := NewStroke()
	s.Observe(state(1, geom.Vec3{}, 0.02))
	s.Observe(state(2, geom.Vec3{}, 0.07))
	s.Observe(state(3, geom.Vec3{}, 0.01))

	if s.Value() != 0.07 {
		t.Errorf("max stroke = %v, want 0.07", s.Value())
	}

	s.Reset()
	if s.Value() != 0 {
		t.Errorf("stroke after reset = %v, want 0", s.Value())
	}
}

func TestConvergence(t *testing.T) {
	c := NewConvergence()
	if c.Value() != 1 {
		t.Errorf("empty convergence = %v, want 1", c.Value())
	}

	c.Observe(state(1, geom.NewVec3(1, 0, 0), 0))
	c.Observe(state(2, geom.NewVec3(0.5, 0, 0), 0))
	c.Observe(state(3, geom.NewVec3(0.25, 0, 0), 0))

	if math.Abs(c.Value()-0.25) > 1e-12 {
		t.Errorf("convergence = %v, want 0.25", c.Value())
	}
}

func TestConvergenceZeroInitialError(t *testing.T) {
	c := NewConvergence()
	c.Observe(state(1, geom.Vec3{}, 0))
	c.Observe(state(2, geom.NewVec3(1, 0, 0), 0))
	if c.Value() != 1 {
		t.Errorf("convergence with zero first error = %v, want 1", c.Value())
	}
}
