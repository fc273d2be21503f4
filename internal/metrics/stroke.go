package metrics

import (
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
)

// Stroke tracks the largest single-step actuator adjustment seen in a run.
type Stroke struct {
	max float64
}

func NewStroke() *Stroke {
	return &Stroke{}
}

func (s *Stroke) Name() string { return "max_stroke" }

func (s *Stroke) Observe(st calib.State) {
	if st.MaxAdjustment > s.max {
		s.max = st.MaxAdjustment
	}
}

func (s *Stroke) Value() float64 { return s.max }

func (s *Stroke) Reset() { s.max = 0 }
