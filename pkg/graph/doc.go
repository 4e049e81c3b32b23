// Package graph implements a dataflow node graph that keeps every node's
// cached output correct while the graph is edited.
//
// # Overview
//
// A [Store] owns a set of [Node] values, each wrapping a [Kind] (the per-node
// compute implementation) and a fixed set of typed [Pin] values. Output pins
// connect to input pins through [Link] records. The store is the only mutator
// of topology: every connect goes through a validate-then-commit protocol, and
// every change drives readiness and dirty propagation.
//
// # Basic Usage
//
//	s := graph.New()
//	noise := s.AddNode("base", kinds.NewPerlin3D(7))
//	scale := s.AddNode("scaled", kinds.NewScale(2))
//
//	out, _ := s.FindPin(noise, "out")
//	in, _ := s.FindPin(scale, "in")
//
//	// While the user drags: preview only, nothing changes.
//	if _, err := s.TryConnect(out, in, false); err != nil {
//	    // show the candidate link as invalid
//	}
//	// On release: commit.
//	link, err := s.TryConnect(out, in, true)
//
//	s.Tick(ctx) // recompute every ready, dirty node in dependency order
//
// # Identifiers
//
// [NodeID], [PinID] and [LinkID] are generation-tagged arena handles (see
// package ident). A handle to a removed entity resolves to a "not found" error
// instead of reaching whatever entity later reuses its slot. Nodes refer to
// their peers only by NodeID; nothing outside the store holds an owning handle.
//
// # Readiness and Dirtiness
//
// A node is ready when every required input pin is connected and every
// upstream node is itself ready. A node is dirty when its cached output may be
// stale. [Store.MarkDirty] propagates dirtiness downstream and stops at nodes
// that are already dirty, so each dependent is touched once per change even in
// diamond-shaped graphs. Recomputation is lazy: only [Store.Tick] calls into
// [Kind.Recompute].
//
// # Validation
//
// [Store.TryConnect] rejects, in order: unknown pins, pins on the same node,
// two pins of the same direction, mismatched type tags, a destination that
// already has a source, a link that would close a cycle, and finally a source
// the destination kind refuses (kind-specific check). Every rejection leaves
// the graph unchanged.
//
// # Concurrency
//
// A Store is not safe for concurrent use. Mutation and ticks are expected to
// run on a single owner goroutine; kinds that do expensive work may hand it
// off to a worker inside Recompute and report [ErrPending] until it finishes.
package graph
