// Package pkg provides the core libraries for noisegraph, a dataflow engine
// for procedural noise node graphs.
//
// # Overview
//
// A graph is a set of nodes, each owning typed input and output pins, joined
// by links from an output to an input. Connections are validated before they
// are committed, so an editor can preview a drag and show why it would fail.
// Changes mark downstream nodes dirty, and a tick recomputes only what is
// ready and dirty, upstream first.
//
// The pkg directory is organized into four areas:
//
//  1. Engine: [ident], [graph], [errors]
//  2. Node kinds: [kinds]
//  3. Tooling: [script], [dag], [render/dot], [cache], [server]
//  4. Observability: [observability] and its metrics and tracing adapters
//
// # Architecture
//
// The typical data flow:
//
//	TOML edit script
//	         ↓
//	    [script] package (declare nodes, apply steps)
//	         ↓
//	    [graph] package (validate, link, propagate readiness and dirtiness)
//	         ↓
//	    [kinds] package (publish fields, render images off the tick)
//	         ↓
//	    [dag] snapshot → [render/dot] → DOT/SVG/PNG
//
// # Quick Start
//
//	s := graph.New()
//	src := s.AddNode("base", kinds.NewPerlin3D())
//	cut := s.AddNode("cut", kinds.NewSlice())
//
//	out, _ := s.FindPin(src, "out")
//	in, _ := s.FindPin(cut, "in")
//	if _, err := s.TryConnect(out, in, false); err != nil {
//	    // show errors.GetCode(err) next to the cursor
//	}
//	s.TryConnect(out, in, true)
//
//	stats, _ := s.Tick(ctx)
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/graph/...     # Specific package
//	go test -run Example ./...  # Examples only
//
// [ident]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/ident
// [graph]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/graph
// [errors]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/errors
// [kinds]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/kinds
// [script]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/script
// [dag]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/dag
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/render/dot
// [cache]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/noisegraph/pkg/observability
package pkg
