// Package session wires a calibration scenario together: mirror, beam,
// detector and sensor built from configuration, interaction-matrix
// identification, disturbance injection and the closed loop.
package session

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/config"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/metrics"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/optics"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/sensor"
)

// Session owns the collaborators of one calibration run. The sensor reference
// is captured against the pristine mirror at construction and stays fixed for
// the session's lifetime.
type Session struct {
	Config   *config.Config
	Mirror   *optics.Mirror
	Detector *optics.Detector
	Sensor   *sensor.Sensor
	Beam     geom.Ray

	registry *Registry
}

// New builds a session from configuration. The mirror starts flat; the
// configured disturbance is not applied until Disturb is called, so the
// interaction matrix can be identified at the flat operating point first.
func New(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("session requires a config")
	}

	mirror, err := optics.NewMirror(cfg.Mirror.Rows, cfg.Mirror.Cols, cfg.Mirror.Pitch)
	if err != nil {
		return nil, fmt.Errorf("building mirror: %w", err)
	}

	detector, err := optics.NewDetector(
		vec(cfg.Detector.Center), vec(cfg.Detector.Normal), cfg.Detector.HalfSize)
	if err != nil {
		return nil, fmt.Errorf("building detector: %w", err)
	}

	beam, err := geom.NewRay(vec(cfg.Beam.Origin), vec(cfg.Beam.Direction))
	if err != nil {
		return nil, fmt.Errorf("building beam: %w", err)
	}

	sens, err := sensor.NewAligned(detector, mirror, beam)
	if err != nil {
		return nil, fmt.Errorf("aligning sensor: %w", err)
	}

	return &Session{
		Config:   cfg,
		Mirror:   mirror,
		Detector: detector,
		Sensor:   sens,
		Beam:     beam,
		registry: NewRegistry(),
	}, nil
}

// Identify builds the interaction matrix at the mirror's current figure.
func (s *Session) Identify() (*mat.Dense, error) {
	return calib.BuildInteractionMatrix(s.Mirror, s.Sensor, s.Beam, s.Config.Loop.Perturbation)
}

// Disturb applies the configured disturbance shape to the mirror.
func (s *Session) Disturb() error {
	field, err := s.registry.GetShape(s.Config.Disturbance.Shape, s.Config.Disturbance.Amplitude)
	if err != nil {
		return err
	}
	return s.Mirror.ApplyDeformation(field)
}

// LoopConfig translates the session configuration into a calibration config.
func (s *Session) LoopConfig() calib.Config {
	return calib.Config{
		Steps:         s.Config.Loop.Steps,
		Gain:          s.Config.Loop.Gain,
		Target:        vec(s.Config.Loop.Target),
		ConvergeBelow: s.Config.Loop.ConvergeBelow,
		DivergeAbove:  s.Config.Loop.DivergeAbove,
	}
}

// DefaultMetrics returns the metrics attached to every session run.
func DefaultMetrics() []calib.Metric {
	return []calib.Metric{
		metrics.NewResidual(),
		metrics.NewStroke(),
		metrics.NewConvergence(),
	}
}

// Run performs the full sequence: identify at the flat operating point,
// disturb, then close the loop. Observers see every completed step.
func (s *Session) Run(ctx context.Context, observers ...calib.Observer) (*calib.Result, error) {
	im, err := s.Identify()
	if err != nil {
		return nil, fmt.Errorf("identifying interaction matrix: %w", err)
	}
	if err := s.Disturb(); err != nil {
		return nil, fmt.Errorf("applying disturbance: %w", err)
	}

	c := calib.New(s.Mirror, s.Sensor, s.Beam, im)
	for _, m := range DefaultMetrics() {
		c.AddMetric(m)
	}
	for _, o := range observers {
		c.AddObserver(o)
	}
	return c.Run(ctx, s.LoopConfig())
}

func vec(v [3]float64) geom.Vec3 {
	return geom.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
