package geom

import "fmt"

// Ray is an immutable origin plus unit direction. Direction is normalized at
// construction; operations that change direction (reflection) build a new Ray.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay builds a ray from an origin and a direction. The direction is
// normalized; a zero-length direction is rejected.
func NewRay(origin, direction Vec3) (Ray, error) {
	unit, ok := direction.Normalize()
	if !ok {
		return Ray{}, fmt.Errorf("ray direction has zero length")
	}
	return Ray{Origin: origin, Direction: unit}, nil
}

// At returns the point at parametric distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
