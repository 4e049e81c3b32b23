package graph

import "slices"

// Node is a compute unit in a [Store]. All of its fields are managed by the
// store; callers read them through accessors.
type Node struct {
	id       NodeID
	name     string
	kind     Kind
	inputs   []PinID
	outputs  []PinID
	required int

	ready bool
	dirty bool
	rev   uint64

	// Relation sets keyed by peer id. The value counts links between the
	// pair: two links from one producer into two slots of this node count 2.
	upstream   map[NodeID]int
	downstream map[NodeID]int
}

func (n *Node) ID() NodeID       { return n.id }
func (n *Node) Name() string     { return n.name }
func (n *Node) Kind() Kind       { return n.kind }
func (n *Node) KindName() string { return n.kind.Kind() }

// Inputs returns the node's input pins in slot order.
func (n *Node) Inputs() []PinID { return slices.Clone(n.inputs) }

// Outputs returns the node's output pins in slot order.
func (n *Node) Outputs() []PinID { return slices.Clone(n.outputs) }

// Input returns the input pin at slot.
func (n *Node) Input(slot int) (PinID, bool) {
	if slot < 0 || slot >= len(n.inputs) {
		return PinID{}, false
	}
	return n.inputs[slot], true
}

// Output returns the output pin at slot.
func (n *Node) Output(slot int) (PinID, bool) {
	if slot < 0 || slot >= len(n.outputs) {
		return PinID{}, false
	}
	return n.outputs[slot], true
}

// RequiredInputCount is the number of leading input slots that must be
// connected for the node to be ready.
func (n *Node) RequiredInputCount() int { return n.required }

// IsReady reports whether all required inputs are connected and every
// upstream node is ready.
func (n *Node) IsReady() bool { return n.ready }

// IsDirty reports whether the node's output may be stale.
func (n *Node) IsDirty() bool { return n.dirty }

// Revision counts invalidations of the node. It is the rev passed to
// [Kind.Recompute].
func (n *Node) Revision() uint64 { return n.rev }

// Upstream returns the nodes this node consumes from, ordered by id.
func (n *Node) Upstream() []NodeID { return sortedNodeIDs(n.upstream) }

// Downstream returns the nodes consuming one of this node's outputs.
func (n *Node) Downstream() []NodeID { return sortedNodeIDs(n.downstream) }

func (n *Node) pins() []PinID {
	return append(slices.Clone(n.inputs), n.outputs...)
}
