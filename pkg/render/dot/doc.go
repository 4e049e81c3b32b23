// Package dot renders graph snapshots as Graphviz node-link diagrams.
//
// # Usage
//
// Convert a snapshot to DOT, then render it in-process:
//
//	src := dot.ToDOT(store.Snapshot(), dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Layout
//
// Nodes are grouped into one rank per snapshot row, so sources sit at the
// top and every link points downwards. Node fill encodes state:
//
//   - white: ready and clean
//   - gold: ready and dirty, recomputed on the next tick
//   - grey, dashed: not ready
//
// With Detailed set, node labels add the kind name and links are labelled
// with the pin names they join.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], a WebAssembly build of
// Graphviz, so no system install is needed.
package dot
