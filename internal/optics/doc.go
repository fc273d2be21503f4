// Package optics provides the geometric-optics model: a deformable mirror, a
// planar detector and the ray tracing between them.
//
//   - [Mirror]: height-mapped reflective surface driven by an ordered set of
//     actuators, with a continuous interpolated height and normal field
//   - [Detector]: finite planar sensor, intersection only
//   - [Reflect]: law of reflection for unit vectors
//   - [TraceToDetector]: beam → mirror → detector in one call
//
// The mirror's height field is the sum of Gaussian actuator influence
// functions, so the surface stays smooth under perturbation:
//
//	m, _ := optics.NewMirror(5, 5, 0.2)
//	m.Perturb(12, 0.01)
//	z := m.HeightAt(0.1, -0.1)
//
// All intersection queries return the nearest forward hit and report misses
// through an ok flag; callers must not read the point or normal on a miss.
package optics
