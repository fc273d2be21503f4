package metrics

import (
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
)

// Convergence reports the ratio of the final error norm to the first. Values
// below 1 mean the loop reduced the error; above 1, it diverged.
type Convergence struct {
	first   float64
	last    float64
	samples int
}

func NewConvergence() *Convergence {
	return &Convergence{}
}

func (c *Convergence) Name() string { return "convergence" }

func (c *Convergence) Observe(s calib.State) {
	n := s.ErrorNorm()
	if c.samples == 0 {
		c.first = n
	}
	c.last = n
	c.samples++
}

func (c *Convergence) Value() float64 {
	if c.samples == 0 || c.first == 0 {
		return 1
	}
	return c.last / c.first
}

func (c *Convergence) Reset() {
	c.first = 0
	c.last = 0
	c.samples = 0
}
