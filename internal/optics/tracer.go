package optics

import (
	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/geom"
)

// Reflect returns the specular reflection of direction d about the surface
// normal n: d' = d - 2(d·n)n. The caller must pass a unit-length normal; the
// result is undefined otherwise.
func Reflect(d, n geom.Vec3) geom.Vec3 {
	return d.Sub(n.Scale(2 * d.Dot(n)))
}

// TraceToDetector follows ray onto the mirror, reflects it, and intersects
// the reflected ray with the detector. It reports the mirror hit, the
// reflected ray, and the detector hit; ok is false when either surface is
// missed, and the returned values are unspecified in that case.
func TraceToDetector(ray geom.Ray, m *Mirror, det *Detector) (mirrorHit geom.Vec3, reflected geom.Ray, detectorHit geom.Vec3, ok bool) {
	hit, normal, ok := m.Intersect(ray)
	if !ok {
		return geom.Vec3{}, geom.Ray{}, geom.Vec3{}, false
	}
	reflected = geom.Ray{Origin: hit, Direction: Reflect(ray.Direction, normal)}
	detectorHit, ok = det.Intersect(reflected)
	if !ok {
		return geom.Vec3{}, geom.Ray{}, geom.Vec3{}, false
	}
	return hit, reflected, detectorHit, true
}
