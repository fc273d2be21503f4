package session

import (
	"fmt"
	"math"
	"sort"
)

// DeformationField maps a surface-local position to a height offset.
type DeformationField func(x, y float64) float64

// Registry resolves disturbance shapes by name.
type Registry struct {
	shapes map[string]func(amplitude float64) DeformationField
}

func NewRegistry() *Registry {
	r := &Registry{shapes: make(map[string]func(float64) DeformationField)}

	r.shapes["none"] = func(amplitude float64) DeformationField {
		return func(x, y float64) float64 { return 0 }
	}
	r.shapes["tilt"] = func(amplitude float64) DeformationField {
		return func(x, y float64) float64 { return amplitude * x }
	}
	r.shapes["bump"] = func(amplitude float64) DeformationField {
		const width = 0.25
		return func(x, y float64) float64 {
			return amplitude * math.Exp(-(x*x+y*y)/(2*width*width))
		}
	}
	r.shapes["defocus"] = func(amplitude float64) DeformationField {
		return func(x, y float64) float64 { return amplitude * (x*x + y*y) }
	}
	r.shapes["astigmatism"] = func(amplitude float64) DeformationField {
		return func(x, y float64) float64 { return amplitude * (x*x - y*y) }
	}

	return r
}

// GetShape returns the named deformation field at the given amplitude.
func (r *Registry) GetShape(name string, amplitude float64) (DeformationField, error) {
	fn, ok := r.shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown disturbance shape: %s", name)
	}
	return fn(amplitude), nil
}

// ListShapes returns the known shape names, sorted.
func (r *Registry) ListShapes() []string {
	names := make([]string, 0, len(r.shapes))
	for name := range r.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
