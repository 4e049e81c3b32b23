// Package kinds provides the built-in node kinds of a noise graph.
//
// Kinds fall into four groups:
//
//   - generators with no inputs: perlin3d, billow3d, constant2d, probe3d
//   - modifiers with one input: scale, slice
//   - combiners: add (second input optional)
//   - renderers: render, which rasterizes a 2D field on a worker goroutine
//
// Values travel between kinds as immutable fields. A kind publishes a new
// [Field3D] or [Field2D] from Recompute and downstream kinds capture it when
// they recompute, so a field handed to a worker can never change under it.
//
// Kinds are created by name through a [Registry]:
//
//	reg := kinds.Builtin()
//	k, err := reg.New("perlin3d", map[string]any{"seed": 7, "frequency": 4.0})
//	id := store.AddNode("base", k)
package kinds
