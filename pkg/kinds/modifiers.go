package kinds

import (
	"context"

	"github.com/matzehuels/noisegraph/pkg/graph"
)

// Scale multiplies a 3D field by a constant factor.
type Scale struct {
	in     sources[Sampler3D]
	factor float64
	field  Field3D
}

func NewScale() *Scale { return &Scale{in: make(sources[Sampler3D]), factor: 1} }

func (*Scale) Kind() string { return "scale" }

func (*Scale) Layout() graph.Layout {
	return graph.Layout{
		Inputs:  []graph.PinSpec{pin("in", TypeNoise3D)},
		Outputs: []graph.PinSpec{pin("out", TypeNoise3D)},
	}
}

func (k *Scale) OnSourceAttached(a graph.Attachment, commit bool) error {
	return k.in.attach(k.Kind(), "3D field", a, commit)
}

func (k *Scale) OnSourceDetached(a graph.Attachment) { k.in.detach(a) }

func (k *Scale) SetParam(name string, v any) error {
	if name != "factor" {
		return unknownParam(k.Kind(), name)
	}
	f, err := floatParam(name, v)
	if err != nil {
		return err
	}
	k.factor = f
	return nil
}

func (k *Scale) Params() map[string]any { return map[string]any{"factor": k.factor} }

func (k *Scale) Recompute(context.Context, uint64) error {
	f, err := field3D(k.in, k.Kind(), 0)
	if err != nil {
		return err
	}
	factor := k.factor
	k.field = func(x, y, z float64) float64 { return factor * f(x, y, z) }
	return nil
}

func (k *Scale) Field3D() Field3D { return k.field }

// Add sums two 3D fields. Only the first input is required; with the
// second unconnected Add passes the first through.
type Add struct {
	in    sources[Sampler3D]
	field Field3D
}

func NewAdd() *Add { return &Add{in: make(sources[Sampler3D])} }

func (*Add) Kind() string { return "add" }

func (*Add) Layout() graph.Layout {
	return graph.Layout{
		Inputs:  []graph.PinSpec{pin("a", TypeNoise3D), pin("b", TypeNoise3D)},
		Outputs: []graph.PinSpec{pin("out", TypeNoise3D)},
	}
}

func (*Add) RequiredInputCount() int { return 1 }

func (k *Add) OnSourceAttached(a graph.Attachment, commit bool) error {
	return k.in.attach(k.Kind(), "3D field", a, commit)
}

func (k *Add) OnSourceDetached(a graph.Attachment) { k.in.detach(a) }

func (k *Add) Recompute(context.Context, uint64) error {
	a, err := field3D(k.in, k.Kind(), 0)
	if err != nil {
		return err
	}
	if _, ok := k.in[1]; !ok {
		k.field = a
		return nil
	}
	b, err := field3D(k.in, k.Kind(), 1)
	if err != nil {
		return err
	}
	k.field = func(x, y, z float64) float64 { return a(x, y, z) + b(x, y, z) }
	return nil
}

func (k *Add) Field3D() Field3D { return k.field }

// Slice cuts a 3D field at a fixed depth, producing a 2D field.
type Slice struct {
	in    sources[Sampler3D]
	z     float64
	field Field2D
}

func NewSlice() *Slice { return &Slice{in: make(sources[Sampler3D])} }

func (*Slice) Kind() string { return "slice" }

func (*Slice) Layout() graph.Layout {
	return graph.Layout{
		Inputs:  []graph.PinSpec{pin("in", TypeNoise3D)},
		Outputs: []graph.PinSpec{pin("out", TypeNoise2D)},
	}
}

func (k *Slice) OnSourceAttached(a graph.Attachment, commit bool) error {
	return k.in.attach(k.Kind(), "3D field", a, commit)
}

func (k *Slice) OnSourceDetached(a graph.Attachment) { k.in.detach(a) }

func (k *Slice) SetParam(name string, v any) error {
	if name != "z" {
		return unknownParam(k.Kind(), name)
	}
	z, err := floatParam(name, v)
	if err != nil {
		return err
	}
	k.z = z
	return nil
}

func (k *Slice) Params() map[string]any { return map[string]any{"z": k.z} }

func (k *Slice) Recompute(context.Context, uint64) error {
	f, err := field3D(k.in, k.Kind(), 0)
	if err != nil {
		return err
	}
	z := k.z
	k.field = func(x, y float64) float64 { return f(x, y, z) }
	return nil
}

func (k *Slice) Field2D() Field2D { return k.field }
