package graph

import (
	"context"
	"errors"
)

// ErrPending is returned by [Kind.Recompute] while work handed off to a
// worker is still in flight. The node stays dirty and Recompute is called
// again on the next tick.
var ErrPending = errors.New("recompute pending")

// Layout declares a kind's pins. Slot indices follow declaration order.
type Layout struct {
	Inputs  []PinSpec
	Outputs []PinSpec
}

// Attachment describes a link from the destination kind's point of view.
type Attachment struct {
	Source     Kind    // compute object of the upstream node
	SourceNode NodeID  // upstream node
	SourceSlot int     // output slot on the upstream node
	DestSlot   int     // input slot on this node
	Type       TypeTag // shared type tag of both pins
}

// Kind is the per-node compute contract. The store never inspects a kind's
// internals; it only calls the methods below.
type Kind interface {
	// Kind returns a short stable name for the kind, e.g. "perlin3d".
	Kind() string

	// Layout returns the kind's pins. It must return the same layout for the
	// lifetime of the kind.
	Layout() Layout

	// OnSourceAttached binds the upstream producer for a.DestSlot.
	//
	// With commit false it only answers whether the source would be accepted
	// and must not change any state. A non-nil error rejects the link; the
	// store reports it as IncompatibleSourceKind.
	OnSourceAttached(a Attachment, commit bool) error

	// OnSourceDetached releases the producer bound for a.DestSlot.
	OnSourceDetached(a Attachment)

	// Recompute refreshes the kind's output from its attached sources.
	// It is called only while the node is ready and dirty, after every
	// upstream node is clean. rev increases whenever the node is invalidated,
	// so a kind doing asynchronous work can tell a newer request from the one
	// in flight. Return ErrPending to stay dirty.
	Recompute(ctx context.Context, rev uint64) error
}

// InputRequirer is implemented by kinds for which only the first
// RequiredInputCount input slots must be connected for the node to be ready.
// Kinds that do not implement it require all of their inputs.
type InputRequirer interface {
	RequiredInputCount() int
}

// Configurable is implemented by kinds with editable settings.
// A successful SetParam marks the node dirty.
type Configurable interface {
	SetParam(name string, value any) error
}

// DirtyObserver is implemented by kinds that want to know when their cached
// output goes stale, for example to grey out a preview. OnDirty is called
// once per clean-to-dirty transition.
type DirtyObserver interface {
	OnDirty()
}
