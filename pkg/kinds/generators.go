package kinds

import (
	"context"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
)

// =============================================================================
// perlin3d
// =============================================================================

// Perlin3D generates seeded gradient noise.
type Perlin3D struct {
	generator
	seed      int64
	frequency float64
	field     Field3D
}

// NewPerlin3D returns a perlin3d kind with seed 0 and frequency 4.
func NewPerlin3D() *Perlin3D { return &Perlin3D{frequency: 4} }

func (*Perlin3D) Kind() string { return "perlin3d" }

func (*Perlin3D) Layout() graph.Layout {
	return graph.Layout{Outputs: []graph.PinSpec{pin("out", TypeNoise3D)}}
}

func (k *Perlin3D) SetParam(name string, v any) error {
	switch name {
	case "seed":
		n, err := intParam(name, v)
		if err != nil {
			return err
		}
		k.seed = int64(n)
	case "frequency":
		f, err := frequencyParam(name, v)
		if err != nil {
			return err
		}
		k.frequency = f
	default:
		return unknownParam(k.Kind(), name)
	}
	return nil
}

func (k *Perlin3D) Params() map[string]any {
	return map[string]any{"seed": k.seed, "frequency": k.frequency}
}

func (k *Perlin3D) Recompute(context.Context, uint64) error {
	p, freq := newPerlin(k.seed), k.frequency
	k.field = func(x, y, z float64) float64 { return p.at(x*freq, y*freq, z*freq) }
	return nil
}

func (k *Perlin3D) Field3D() Field3D { return k.field }

// =============================================================================
// billow3d
// =============================================================================

// Billow3D generates folded multi-octave noise with a puffy, cloud-like look.
type Billow3D struct {
	generator
	seed      int64
	frequency float64
	octaves   int
	field     Field3D
}

// NewBillow3D returns a billow3d kind with frequency 2 and 4 octaves.
func NewBillow3D() *Billow3D { return &Billow3D{frequency: 2, octaves: 4} }

func (*Billow3D) Kind() string { return "billow3d" }

func (*Billow3D) Layout() graph.Layout {
	return graph.Layout{Outputs: []graph.PinSpec{pin("out", TypeNoise3D)}}
}

func (k *Billow3D) SetParam(name string, v any) error {
	switch name {
	case "seed":
		n, err := intParam(name, v)
		if err != nil {
			return err
		}
		k.seed = int64(n)
	case "frequency":
		f, err := frequencyParam(name, v)
		if err != nil {
			return err
		}
		k.frequency = f
	case "octaves":
		n, err := positiveInt(name, v, 16)
		if err != nil {
			return err
		}
		k.octaves = n
	default:
		return unknownParam(k.Kind(), name)
	}
	return nil
}

func (k *Billow3D) Params() map[string]any {
	return map[string]any{"seed": k.seed, "frequency": k.frequency, "octaves": k.octaves}
}

func (k *Billow3D) Recompute(context.Context, uint64) error {
	p, freq, oct := newPerlin(k.seed), k.frequency, k.octaves
	k.field = func(x, y, z float64) float64 { return p.billow(x*freq, y*freq, z*freq, oct) }
	return nil
}

func (k *Billow3D) Field3D() Field3D { return k.field }

// =============================================================================
// constant2d
// =============================================================================

// Constant2D outputs the same value everywhere on the plane.
type Constant2D struct {
	generator
	value float64
	field Field2D
}

func NewConstant2D() *Constant2D { return &Constant2D{} }

func (*Constant2D) Kind() string { return "constant2d" }

func (*Constant2D) Layout() graph.Layout {
	return graph.Layout{Outputs: []graph.PinSpec{pin("out", TypeNoise2D)}}
}

func (k *Constant2D) SetParam(name string, v any) error {
	if name != "value" {
		return unknownParam(k.Kind(), name)
	}
	f, err := floatParam(name, v)
	if err != nil {
		return err
	}
	k.value = f
	return nil
}

func (k *Constant2D) Params() map[string]any { return map[string]any{"value": k.value} }

func (k *Constant2D) Recompute(context.Context, uint64) error {
	v := k.value
	k.field = func(float64, float64) float64 { return v }
	return nil
}

func (k *Constant2D) Field2D() Field2D { return k.field }

// =============================================================================
// probe3d
// =============================================================================

// Probe3D has a Noise3D output but publishes no field. It stands in for
// tooling nodes that share the pin type without producing samples; kinds
// that read fields reject it as a source.
type Probe3D struct {
	generator
}

func NewProbe3D() *Probe3D { return &Probe3D{} }

func (*Probe3D) Kind() string { return "probe3d" }

func (*Probe3D) Layout() graph.Layout {
	return graph.Layout{Outputs: []graph.PinSpec{pin("out", TypeNoise3D)}}
}

func (*Probe3D) Recompute(context.Context, uint64) error { return nil }

func frequencyParam(name string, v any) (float64, error) {
	f, err := floatParam(name, v)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, errs.New(errs.ErrCodeInvalidParam, "%s must be positive, got %v", name, f)
	}
	return f, nil
}
