package optics

import (
	"fmt"
	"math"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
)

// Actuator is a controllable point on the deformable surface. X and Y are
// surface-local coordinates; Height is the current piston offset.
type Actuator struct {
	X, Y   float64
	Height float64
}

// Mirror is a deformable reflective surface. Its continuous height field
// z(x, y) is the sum of Gaussian influence functions centered on the
// actuators, so small actuator perturbations produce smooth changes in both
// intersection point and surface normal.
//
// Actuator identity is the index in the ordered actuator sequence; the order
// is fixed for the lifetime of the mirror, and the interaction matrix built
// against it is indexed by the same order.
type Mirror struct {
	actuators []Actuator
	sigma     float64

	// extent of the reflective region in surface coordinates
	xMin, xMax float64
	yMin, yMax float64
}

const parallelEpsilon = 1e-8

// NewMirror builds a rows x cols actuator grid with the given pitch, centered
// on the origin of the surface plane, all actuators flat.
func NewMirror(rows, cols int, pitch float64) (*Mirror, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("mirror grid must have at least one actuator, got %dx%d", rows, cols)
	}
	if pitch <= 0 {
		return nil, fmt.Errorf("actuator pitch must be positive, got %f", pitch)
	}

	acts := make([]Actuator, 0, rows*cols)
	x0 := -float64(cols-1) * pitch / 2
	y0 := -float64(rows-1) * pitch / 2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			acts = append(acts, Actuator{X: x0 + float64(c)*pitch, Y: y0 + float64(r)*pitch})
		}
	}

	// Influence width tied to pitch gives ~35% inter-actuator coupling,
	// typical for a continuous-facesheet mirror.
	return NewMirrorFromActuators(acts, pitch, 0.7*pitch)
}

// NewMirrorFromActuators builds a mirror from an explicit actuator layout.
// The reflective extent is the actuator bounding box grown by margin; sigma
// is the Gaussian influence width. An empty actuator set is invalid.
func NewMirrorFromActuators(acts []Actuator, margin, sigma float64) (*Mirror, error) {
	if len(acts) == 0 {
		return nil, fmt.Errorf("mirror requires at least one actuator")
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("influence width must be positive, got %f", sigma)
	}
	if margin <= 0 {
		return nil, fmt.Errorf("extent margin must be positive, got %f", margin)
	}

	m := &Mirror{
		actuators: make([]Actuator, len(acts)),
		sigma:     sigma,
		xMin:      math.Inf(1), xMax: math.Inf(-1),
		yMin: math.Inf(1), yMax: math.Inf(-1),
	}
	copy(m.actuators, acts)
	for _, a := range acts {
		m.xMin = math.Min(m.xMin, a.X)
		m.xMax = math.Max(m.xMax, a.X)
		m.yMin = math.Min(m.yMin, a.Y)
		m.yMax = math.Max(m.yMax, a.Y)
	}
	m.xMin -= margin
	m.xMax += margin
	m.yMin -= margin
	m.yMax += margin
	return m, nil
}

func (m *Mirror) NumActuators() int { return len(m.actuators) }

// Actuators returns a copy of the actuator sequence in index order.
func (m *Mirror) Actuators() []Actuator {
	acts := make([]Actuator, len(m.actuators))
	copy(acts, m.actuators)
	return acts
}

func (m *Mirror) ActuatorHeight(i int) (float64, error) {
	if i < 0 || i >= len(m.actuators) {
		return 0, fmt.Errorf("actuator index %d out of range [0,%d)", i, len(m.actuators))
	}
	return m.actuators[i].Height, nil
}

// SetActuatorHeight sets actuator i to an absolute height.
func (m *Mirror) SetActuatorHeight(i int, h float64) error {
	if i < 0 || i >= len(m.actuators) {
		return fmt.Errorf("actuator index %d out of range [0,%d)", i, len(m.actuators))
	}
	m.actuators[i].Height = h
	return nil
}

// Perturb adds delta to actuator i's height. The height field reflects the
// change on the next query.
func (m *Mirror) Perturb(i int, delta float64) error {
	if i < 0 || i >= len(m.actuators) {
		return fmt.Errorf("actuator index %d out of range [0,%d)", i, len(m.actuators))
	}
	m.actuators[i].Height += delta
	return nil
}

// ApplyDeformation adds f(x, y) to every actuator's height, in index order.
// The field is evaluated for all actuators before any height changes, so a
// field that is undefined (NaN/Inf) at any actuator position fails the whole
// call without partial mutation.
func (m *Mirror) ApplyDeformation(f func(x, y float64) float64) error {
	if f == nil {
		return fmt.Errorf("deformation field is nil")
	}
	deltas := make([]float64, len(m.actuators))
	for i, a := range m.actuators {
		dz := f(a.X, a.Y)
		if math.IsNaN(dz) || math.IsInf(dz, 0) {
			return fmt.Errorf("deformation field undefined at actuator %d (%.4f, %.4f)", i, a.X, a.Y)
		}
		deltas[i] = dz
	}
	for i := range m.actuators {
		m.actuators[i].Height += deltas[i]
	}
	return nil
}

// HeightAt returns the interpolated surface height at (x, y). Queries outside
// the reflective extent are clamped to its boundary.
func (m *Mirror) HeightAt(x, y float64) float64 {
	x, y = m.clamp(x, y)
	return m.height(x, y)
}

// NormalAt returns the unit surface normal at (x, y), consistent with the
// height field. Queries outside the reflective extent are clamped like
// HeightAt.
func (m *Mirror) NormalAt(x, y float64) geom.Vec3 {
	x, y = m.clamp(x, y)
	dzdx, dzdy := m.gradient(x, y)
	n, _ := geom.NewVec3(-dzdx, -dzdy, 1).Normalize()
	return n
}

// Intersect returns the nearest forward intersection of ray with the surface
// and the unit normal there. Rays travelling parallel to the surface plane,
// hitting behind the origin, or landing outside the reflective extent miss.
func (m *Mirror) Intersect(ray geom.Ray) (point, normal geom.Vec3, ok bool) {
	if math.Abs(ray.Direction.Z) < parallelEpsilon {
		return geom.Vec3{}, geom.Vec3{}, false
	}

	// The surface is a gentle height field z = h(x, y): fixed-point iterate
	// t = (h(x(t), y(t)) - o.z) / d.z starting from the z=0 plane crossing.
	t := -ray.Origin.Z / ray.Direction.Z
	for iter := 0; iter < 16; iter++ {
		p := ray.At(t)
		next := (m.height(p.X, p.Y) - ray.Origin.Z) / ray.Direction.Z
		if math.Abs(next-t) < 1e-12 {
			t = next
			break
		}
		t = next
	}
	if t < 0 {
		return geom.Vec3{}, geom.Vec3{}, false
	}
	p := ray.At(t)
	if p.X < m.xMin || p.X > m.xMax || p.Y < m.yMin || p.Y > m.yMax {
		return geom.Vec3{}, geom.Vec3{}, false
	}
	dzdx, dzdy := m.gradient(p.X, p.Y)
	n, _ := geom.NewVec3(-dzdx, -dzdy, 1).Normalize()
	return p, n, true
}

func (m *Mirror) clamp(x, y float64) (float64, float64) {
	x = math.Max(m.xMin, math.Min(m.xMax, x))
	y = math.Max(m.yMin, math.Min(m.yMax, y))
	return x, y
}

func (m *Mirror) height(x, y float64) float64 {
	inv := 1 / (2 * m.sigma * m.sigma)
	z := 0.0
	for _, a := range m.actuators {
		dx := x - a.X
		dy := y - a.Y
		z += a.Height * math.Exp(-(dx*dx+dy*dy)*inv)
	}
	return z
}

func (m *Mirror) gradient(x, y float64) (dzdx, dzdy float64) {
	s2 := m.sigma * m.sigma
	inv := 1 / (2 * s2)
	for _, a := range m.actuators {
		dx := x - a.X
		dy := y - a.Y
		g := a.Height * math.Exp(-(dx*dx+dy*dy)*inv)
		dzdx -= g * dx / s2
		dzdy -= g * dy / s2
	}
	return dzdx, dzdy
}
