package optics

import (
	"fmt"
	"math"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
)

// Detector is a finite square planar sensor at a fixed pose. It is stateless
// aside from the pose; intersection is its only query.
type Detector struct {
	Center   geom.Vec3
	normal   geom.Vec3
	right    geom.Vec3
	up       geom.Vec3
	halfSize float64
}

// NewDetector builds a detector plane centered at center, facing normal, with
// a square active region of the given half-size.
func NewDetector(center, normal geom.Vec3, halfSize float64) (*Detector, error) {
	unit, ok := normal.Normalize()
	if !ok {
		return nil, fmt.Errorf("detector normal has zero length")
	}
	if halfSize <= 0 {
		return nil, fmt.Errorf("detector half-size must be positive, got %f", halfSize)
	}

	// In-plane basis for the bounds check.
	var seed geom.Vec3
	if math.Abs(unit.X) > 0.1 {
		seed = geom.NewVec3(0, 1, 0)
	} else {
		seed = geom.NewVec3(1, 0, 0)
	}
	right, _ := seed.Cross(unit).Normalize()
	up, _ := unit.Cross(right).Normalize()

	return &Detector{
		Center:   center,
		normal:   unit,
		right:    right,
		up:       up,
		halfSize: halfSize,
	}, nil
}

func (d *Detector) Normal() geom.Vec3 { return d.normal }

// Intersect returns the forward intersection of ray with the detector plane.
// Rays parallel to the plane, intersecting behind the origin, or landing
// outside the active region miss.
func (d *Detector) Intersect(ray geom.Ray) (geom.Vec3, bool) {
	denom := ray.Direction.Dot(d.normal)
	if math.Abs(denom) < parallelEpsilon {
		return geom.Vec3{}, false
	}
	t := d.Center.Sub(ray.Origin).Dot(d.normal) / denom
	if t < 0 {
		return geom.Vec3{}, false
	}
	p := ray.At(t)
	local := p.Sub(d.Center)
	if math.Abs(local.Dot(d.right)) > d.halfSize || math.Abs(local.Dot(d.up)) > d.halfSize {
		return geom.Vec3{}, false
	}
	return p, true
}
