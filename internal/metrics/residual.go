// Package metrics provides calibration-loop metrics: residual error, actuator
// stroke and convergence ratio.
package metrics

import (
	"math"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
)

// Residual tracks the root-mean-square wavefront error norm over a run.
type Residual struct {
	sumSq   float64
	samples int
}

func NewResidual() *Residual {
	return &Residual{}
}

func (r *Residual) Name() string { return "rms_error" }

func (r *Residual) Observe(s calib.State) {
	n := s.ErrorNorm()
	r.sumSq += n * n
	r.samples++
}

func (r *Residual) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSq / float64(r.samples))
}

func (r *Residual) Reset() {
	r.sumSq = 0
	r.samples = 0
}
