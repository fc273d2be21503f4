// Package sensor measures wavefront error as the detector-plane displacement
// of a traced ray relative to a fixed reference point.
package sensor

import (
	"fmt"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/optics"
)

// Wavefront is the displacement of a traced ray's detector intersection from
// the sensor's reference point, used as a 3-vector proxy for phase error.
type Wavefront = geom.Vec3

// Sensor measures wavefronts against one detector and one reference point.
// The reference is the implicit zero of every measurement, so it must stay
// fixed for the whole calibration session.
type Sensor struct {
	detector  *optics.Detector
	reference geom.Vec3
}

// New builds a sensor with an explicit reference point.
func New(detector *optics.Detector, reference geom.Vec3) (*Sensor, error) {
	if detector == nil {
		return nil, fmt.Errorf("sensor requires a detector")
	}
	return &Sensor{detector: detector, reference: reference}, nil
}

// NewAligned builds a sensor whose reference is the detector hit of the given
// beam on the mirror's current figure. Aligning on the undeformed mirror makes
// "zero wavefront" mean "spot where the flat mirror puts it".
func NewAligned(detector *optics.Detector, m *optics.Mirror, beam geom.Ray) (*Sensor, error) {
	if detector == nil {
		return nil, fmt.Errorf("sensor requires a detector")
	}
	_, _, hit, ok := optics.TraceToDetector(beam, m, detector)
	if !ok {
		return nil, fmt.Errorf("alignment beam does not reach the detector")
	}
	return &Sensor{detector: detector, reference: hit}, nil
}

func (s *Sensor) Reference() geom.Vec3 { return s.reference }

// Measure traces ray against the mirror and then the detector, returning the
// detector hit's displacement from the reference point. ok is false when the
// ray misses either surface; no wavefront is obtainable then. Measurement is
// pure: neither the ray nor the mirror is mutated.
func (s *Sensor) Measure(ray geom.Ray, m *optics.Mirror) (Wavefront, bool) {
	_, _, hit, ok := optics.TraceToDetector(ray, m, s.detector)
	if !ok {
		return Wavefront{}, false
	}
	return hit.Sub(s.reference), true
}
