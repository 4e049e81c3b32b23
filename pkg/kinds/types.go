package kinds

import "github.com/matzehuels/noisegraph/pkg/graph"

// Pin type tags used by the built-in kinds.
const (
	TypeNoise3D graph.TypeTag = "Noise3D"
	TypeNoise2D graph.TypeTag = "Noise2D"
	TypeImage   graph.TypeTag = "Image"
)

// Field3D is a scalar field over 3D space, nominally in [-1, 1].
// Fields are pure functions and safe to call from any goroutine.
type Field3D func(x, y, z float64) float64

// Field2D is a scalar field over the plane.
type Field2D func(x, y float64) float64

// Sampler3D is implemented by kinds whose output is a Field3D.
// Field3D returns nil until the kind has recomputed once.
type Sampler3D interface {
	Field3D() Field3D
}

// Sampler2D is implemented by kinds whose output is a Field2D.
type Sampler2D interface {
	Field2D() Field2D
}

// Parameterized is implemented by kinds that expose their settings.
type Parameterized interface {
	Params() map[string]any
}

func pin(name string, t graph.TypeTag) graph.PinSpec {
	return graph.PinSpec{Name: name, Type: t}
}
