// Package calib identifies a mirror's actuator-to-wavefront response and runs
// the closed-loop correction against it.
package calib

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/optics"
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/sensor"
)

// BuildInteractionMatrix probes the mirror actuator by actuator and assembles
// the N x 3 response matrix: row i is the wavefront measured with actuator i
// perturbed by perturbation and every other actuator at its resting height.
// A probe whose ray cannot reach the detector contributes a zero row rather
// than aborting the build.
//
// The matrix is a local linearization: it is only valid near the height
// configuration present at build time. Rebuild it when the operating point
// moves far from where it was identified.
func BuildInteractionMatrix(m *optics.Mirror, s *sensor.Sensor, probe geom.Ray, perturbation float64) (*mat.Dense, error) {
	if m == nil || s == nil {
		return nil, fmt.Errorf("interaction matrix requires a mirror and a sensor")
	}
	if perturbation == 0 {
		return nil, fmt.Errorf("perturbation size must be non-zero")
	}

	n := m.NumActuators()
	im := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		w, ok, err := probeActuator(m, s, probe, i, perturbation)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // zero row
		}
		im.Set(i, 0, w.X)
		im.Set(i, 1, w.Y)
		im.Set(i, 2, w.Z)
	}
	return im, nil
}

// probeActuator perturbs one actuator, measures, and restores the original
// height on every exit path. Probes are independent: exactly one actuator is
// displaced at a time.
func probeActuator(m *optics.Mirror, s *sensor.Sensor, probe geom.Ray, i int, perturbation float64) (w sensor.Wavefront, ok bool, err error) {
	original, err := m.ActuatorHeight(i)
	if err != nil {
		return sensor.Wavefront{}, false, err
	}
	if err := m.Perturb(i, perturbation); err != nil {
		return sensor.Wavefront{}, false, err
	}
	defer m.SetActuatorHeight(i, original)

	w, ok = s.Measure(probe, m)
	return w, ok, nil
}
