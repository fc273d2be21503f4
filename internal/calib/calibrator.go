package calib

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/optics"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/sensor"
)

// Config controls one calibration run.
type Config struct {
	// Steps is the fixed number of correction iterations. Must be positive.
	Steps int
	// Gain is the fraction of the computed correction applied per step, a
	// relaxation factor against overshoot. Zero selects the default 1/Steps.
	// Note the solved adjustments are expressed in multiples of the probe
	// perturbation used to build the interaction matrix, so a gain on the
	// order of that perturbation applies the full physical correction.
	Gain float64
	// Target is the wavefront the loop drives toward. Zero means "spot on
	// the reference point".
	Target geom.Vec3
	// ConvergeBelow stops the loop once the error norm drops under the
	// threshold. Zero disables the guard; the loop then always runs the
	// full step count, matching the classic fixed-iteration controller.
	ConvergeBelow float64
	// DivergeAbove stops the loop once the error norm exceeds the
	// threshold, catching a correction that has left the interaction
	// matrix's validity region. Zero disables the guard.
	DivergeAbove float64
}

// StopReason records why a calibration run ended.
type StopReason string

const (
	StopCompleted  StopReason = "completed"
	StopSensorMiss StopReason = "sensor_miss"
	StopConverged  StopReason = "converged"
	StopDiverged   StopReason = "diverged"
	StopCancelled  StopReason = "cancelled"
)

// State is one completed correction step, emitted for observability.
type State struct {
	Step          int
	Wavefront     geom.Vec3
	Error         geom.Vec3
	Adjustments   []float64
	MaxAdjustment float64
}

// ErrorNorm returns the Euclidean norm of the step's wavefront error.
func (s State) ErrorNorm() float64 {
	return s.Error.Length()
}

// Metric accumulates a scalar over the calibration steps.
type Metric interface {
	Name() string
	Observe(s State)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(s State)
}

// Result is the outcome of a run: one State per completed step, the stop
// reason, and final metric values.
type Result struct {
	States  []State
	Stop    StopReason
	Metrics map[string]float64
}

// Calibrator drives the measured wavefront toward a target by repeatedly
// solving a least-squares correction against a fixed interaction matrix and
// applying a fraction of it to the actuators.
//
// The calibrator is the mirror's single writer while a run is in progress; it
// must not run concurrently with BuildInteractionMatrix against the same
// mirror.
type Calibrator struct {
	mirror    *optics.Mirror
	sensor    *sensor.Sensor
	beam      geom.Ray
	matrix    *mat.Dense
	metrics   []Metric
	observers []Observer
}

func New(m *optics.Mirror, s *sensor.Sensor, beam geom.Ray, matrix *mat.Dense) *Calibrator {
	return &Calibrator{
		mirror: m,
		sensor: s,
		beam:   beam,
		matrix: matrix,
	}
}

func (c *Calibrator) AddMetric(m Metric)     { c.metrics = append(c.metrics, m) }
func (c *Calibrator) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Run executes the closed loop. Configuration problems (bad step count,
// matrix/mirror dimension mismatch) error immediately; a sensor miss mid-loop
// is not an error: the run stops early with the states completed so far and
// the actuators left at whatever the last successful step produced.
func (c *Calibrator) Run(ctx context.Context, cfg Config) (*Result, error) {
	gain, err := c.validate(cfg)
	if err != nil {
		return nil, err
	}

	for _, m := range c.metrics {
		m.Reset()
	}

	result := &Result{
		States:  make([]State, 0, cfg.Steps),
		Stop:    StopCompleted,
		Metrics: make(map[string]float64),
	}

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			result.Stop = StopCancelled
			c.finish(result)
			return result, ctx.Err()
		default:
		}

		current, ok := c.sensor.Measure(c.beam, c.mirror)
		if !ok {
			result.Stop = StopSensorMiss
			break
		}

		errVec := cfg.Target.Sub(current)
		norm := errVec.Length()
		if cfg.ConvergeBelow > 0 && norm < cfg.ConvergeBelow {
			result.Stop = StopConverged
			break
		}
		if cfg.DivergeAbove > 0 && norm > cfg.DivergeAbove {
			result.Stop = StopDiverged
			break
		}

		adjustments := solveMinimumNorm(c.matrix, errVec)
		maxAdj := 0.0
		for i, a := range adjustments {
			if abs := math.Abs(a); abs > maxAdj {
				maxAdj = abs
			}
			if err := c.mirror.Perturb(i, a*gain); err != nil {
				return nil, err
			}
		}

		state := State{
			Step:          step,
			Wavefront:     current,
			Error:         errVec,
			Adjustments:   adjustments,
			MaxAdjustment: maxAdj,
		}
		for _, m := range c.metrics {
			m.Observe(state)
		}
		for _, o := range c.observers {
			o.OnStep(state)
		}
		result.States = append(result.States, state)
	}

	c.finish(result)
	return result, nil
}

func (c *Calibrator) validate(cfg Config) (gain float64, err error) {
	if c.mirror == nil || c.sensor == nil || c.matrix == nil {
		return 0, fmt.Errorf("calibrator requires a mirror, a sensor and an interaction matrix")
	}
	if cfg.Steps <= 0 {
		return 0, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	rows, cols := c.matrix.Dims()
	if rows != c.mirror.NumActuators() {
		return 0, fmt.Errorf("interaction matrix has %d rows for %d actuators", rows, c.mirror.NumActuators())
	}
	if cols != 3 {
		return 0, fmt.Errorf("interaction matrix must have 3 columns, got %d", cols)
	}
	gain = cfg.Gain
	if gain == 0 {
		gain = 1 / float64(cfg.Steps)
	}
	if gain < 0 || gain > 1 {
		return 0, fmt.Errorf("gain must be in (0,1], got %f", cfg.Gain)
	}
	return gain, nil
}

func (c *Calibrator) finish(result *Result) {
	for _, m := range c.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
