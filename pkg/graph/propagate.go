package graph

import (
	"context"
	"errors"
	"slices"
	"time"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/observability"
)

// recomputeReadiness re-derives n's readiness from its required inputs and
// its upstream peers. When the value flips, every downstream peer is
// re-derived too, since their upstream term may have changed. A node that
// becomes ready is set dirty so the next tick computes it.
func (s *Store) recomputeReadiness(n *Node) {
	ready := s.inputsConnected(n) && s.upstreamReady(n)
	if ready == n.ready {
		return
	}
	n.ready = ready
	if ready {
		s.invalidate(n)
	}
	for _, id := range n.Downstream() {
		s.recomputeReadiness(s.mustNode(id))
	}
}

func (s *Store) inputsConnected(n *Node) bool {
	for _, pid := range n.inputs[:n.required] {
		if !s.mustPin(pid).IsConnected() {
			return false
		}
	}
	return true
}

func (s *Store) upstreamReady(n *Node) bool {
	for id := range n.upstream {
		if !s.mustNode(id).ready {
			return false
		}
	}
	return true
}

// invalidate bumps n's revision and sets it dirty. It reports whether n was
// clean before.
func (s *Store) invalidate(n *Node) bool {
	n.rev++
	if n.dirty {
		return false
	}
	n.dirty = true
	if o, ok := n.kind.(DirtyObserver); ok {
		o.OnDirty()
	}
	return true
}

// markDirty invalidates n and walks downstream. The walk stops at nodes that
// were already dirty: their dependents are dirty already.
func (s *Store) markDirty(n *Node) {
	if !s.invalidate(n) {
		return
	}
	for _, id := range n.Downstream() {
		s.markDirty(s.mustNode(id))
	}
}

// MarkDirty flags a node's output as stale after a change to its own state,
// and every transitively dependent node with it.
// It returns ErrUnknownID if the node does not exist.
func (s *Store) MarkDirty(id NodeID) error {
	n, ok := s.nodes.Get(id.ID)
	if !ok {
		return errs.New(errs.ErrCodeUnknownID, "node %v not found", id)
	}
	s.markDirty(n)
	return nil
}

// =============================================================================
// Tick
// =============================================================================

// TickStats summarizes one call to [Store.Tick].
type TickStats struct {
	Visited    int // ready, dirty nodes considered
	Recomputed int // nodes whose Recompute succeeded and are now clean
	Pending    int // nodes whose Recompute returned ErrPending
	Failed     int // nodes whose Recompute returned another error
	Deferred   int // nodes skipped because an upstream node is still dirty
}

// Settled reports whether the tick left no ready node dirty.
func (t TickStats) Settled() bool {
	return t.Pending == 0 && t.Failed == 0 && t.Deferred == 0
}

// Tick runs the lazy recompute pass: nodes are visited upstream before
// downstream, and every node that is ready, dirty and has only clean upstream
// peers is recomputed. A node whose Recompute succeeds becomes clean; a node
// that returns an error, including ErrPending, stays dirty and is retried on
// the next tick. Nodes behind a pending or failed node are deferred, so no
// node is ever computed from a stale upstream value.
//
// Tick stops early and returns ctx.Err() if ctx is cancelled between nodes.
func (s *Store) Tick(ctx context.Context) (TickStats, error) {
	start := time.Now()
	var stats TickStats
	defer func() {
		s.hooks.OnTick(ctx, observability.TickEvent{
			Visited:    stats.Visited,
			Recomputed: stats.Recomputed,
			Pending:    stats.Pending,
			Failed:     stats.Failed,
			Deferred:   stats.Deferred,
			Duration:   time.Since(start),
		})
	}()

	for _, id := range s.Order() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n := s.mustNode(id)
		if !n.ready || !n.dirty {
			continue
		}
		stats.Visited++
		if s.upstreamDirty(n) {
			stats.Deferred++
			continue
		}

		began := time.Now()
		err := n.kind.Recompute(ctx, n.rev)
		pending := errors.Is(err, ErrPending)
		switch {
		case pending:
			stats.Pending++
		case err != nil:
			stats.Failed++
		default:
			n.dirty = false
			stats.Recomputed++
		}

		ev := observability.RecomputeEvent{
			Node:     id.String(),
			Name:     n.name,
			Kind:     n.KindName(),
			Duration: time.Since(began),
			Pending:  pending,
		}
		if !pending {
			ev.Err = err
		}
		s.hooks.OnRecompute(ctx, ev)
	}
	return stats, nil
}

func (s *Store) upstreamDirty(n *Node) bool {
	for id := range n.upstream {
		if s.mustNode(id).dirty {
			return true
		}
	}
	return false
}

// Order returns every node id in dependency order: each node appears after
// all of its upstream peers. Ties are broken by id so the order is stable for
// a given graph.
func (s *Store) Order() []NodeID {
	order, ok := s.order()
	if !ok {
		panic("graph: cycle in committed links")
	}
	return order
}

// order runs Kahn's algorithm. It reports false if some nodes could not be
// ordered, which only happens if the links form a cycle.
func (s *Store) order() ([]NodeID, bool) {
	indeg := make(map[NodeID]int, s.nodes.Len())
	var queue []NodeID
	for _, n := range s.nodes.All() {
		indeg[n.id] = len(n.upstream)
		if len(n.upstream) == 0 {
			queue = append(queue, n.id)
		}
	}

	order := make([]NodeID, 0, s.nodes.Len())
	for len(queue) > 0 {
		slices.SortFunc(queue, func(a, b NodeID) int { return compareID(a.ID, b.ID) })
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range s.mustNode(id).Downstream() {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order, len(order) == s.nodes.Len()
}
