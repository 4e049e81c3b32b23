// Package observability provides hooks for metrics, tracing, and logging.
//
// The graph engine and the render cache report what they do through the hook
// interfaces in this package instead of importing a metrics or tracing
// backend. Backends live in subpackages ([metrics], [tracing]) or in
// [LogHooks], and are registered by main.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGraphHooks(observability.Multi(
//	        observability.NewLogHooks(logger),
//	        metrics.New(prometheus.DefaultRegisterer),
//	    ))
//	    // ... run application
//	}
//
// The engine calls hooks to emit events:
//
//	observability.Graph().OnConnect(observability.ConnectEvent{From: a, To: b, Commit: true})
//
// [metrics]: github.com/matzehuels/noisegraph/pkg/observability/metrics
// [tracing]: github.com/matzehuels/noisegraph/pkg/observability/tracing
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Graph Events
// =============================================================================

// NodeEvent describes a node entering or leaving a graph.
type NodeEvent struct {
	ID   string
	Name string
	Kind string
}

// ConnectEvent describes a connect request, committed or check-only.
// Link is empty unless the request committed successfully.
type ConnectEvent struct {
	From   string // output-side pin id, or the first argument if unresolved
	To     string
	Link   string
	Commit bool
	Err    error
}

// DisconnectEvent describes a disconnect request.
type DisconnectEvent struct {
	Link   string
	Commit bool
	Err    error
}

// RecomputeEvent describes one call into a node kind's Recompute.
type RecomputeEvent struct {
	Node     string
	Name     string
	Kind     string
	Duration time.Duration
	Pending  bool // the kind is still working; the node stays dirty
	Err      error
}

// TickEvent summarizes one lazy-recompute pass.
type TickEvent struct {
	Visited    int
	Recomputed int
	Pending    int
	Failed     int
	Deferred   int
	Duration   time.Duration
}

// =============================================================================
// Hook Interfaces
// =============================================================================

// GraphHooks receives events from a graph store.
// Mutation events carry no context: graph mutation never blocks.
type GraphHooks interface {
	OnNodeAdded(e NodeEvent)
	OnNodeRemoved(e NodeEvent)
	OnConnect(e ConnectEvent)
	OnDisconnect(e DisconnectEvent)

	OnRecompute(ctx context.Context, e RecomputeEvent)
	OnTick(ctx context.Context, e TickEvent)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnNodeAdded(NodeEvent)                       {}
func (NoopGraphHooks) OnNodeRemoved(NodeEvent)                     {}
func (NoopGraphHooks) OnConnect(ConnectEvent)                      {}
func (NoopGraphHooks) OnDisconnect(DisconnectEvent)                {}
func (NoopGraphHooks) OnRecompute(context.Context, RecomputeEvent) {}
func (NoopGraphHooks) OnTick(context.Context, TickEvent)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Fan-out
// =============================================================================

type multiGraphHooks []GraphHooks

// Multi returns GraphHooks that forwards every event to each of hs in order.
// Nil entries are skipped.
func Multi(hs ...GraphHooks) GraphHooks {
	var m multiGraphHooks
	for _, h := range hs {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

func (m multiGraphHooks) OnNodeAdded(e NodeEvent) {
	for _, h := range m {
		h.OnNodeAdded(e)
	}
}

func (m multiGraphHooks) OnNodeRemoved(e NodeEvent) {
	for _, h := range m {
		h.OnNodeRemoved(e)
	}
}

func (m multiGraphHooks) OnConnect(e ConnectEvent) {
	for _, h := range m {
		h.OnConnect(e)
	}
}

func (m multiGraphHooks) OnDisconnect(e DisconnectEvent) {
	for _, h := range m {
		h.OnDisconnect(e)
	}
}

func (m multiGraphHooks) OnRecompute(ctx context.Context, e RecomputeEvent) {
	for _, h := range m {
		h.OnRecompute(ctx, e)
	}
}

func (m multiGraphHooks) OnTick(ctx context.Context, e TickEvent) {
	for _, h := range m {
		h.OnTick(ctx, e)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	graphHooks GraphHooks = NoopGraphHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetGraphHooks registers custom graph hooks.
// Stores created afterwards pick them up unless given their own hooks.
func SetGraphHooks(h GraphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	graphHooks = NoopGraphHooks{}
	cacheHooks = NoopCacheHooks{}
}
