package graph

import "github.com/matzehuels/noisegraph/pkg/dag"

// PinView is a read-only copy of a pin's state.
type PinView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Slot      int    `json:"slot"`
	Links     int    `json:"links"`
}

// NodeView is a read-only copy of a node's state.
type NodeView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Ready      bool      `json:"ready"`
	Dirty      bool      `json:"dirty"`
	Revision   uint64    `json:"revision"`
	Required   int       `json:"required"`
	Inputs     []PinView `json:"inputs"`
	Outputs    []PinView `json:"outputs"`
	Upstream   []string  `json:"upstream,omitempty"`
	Downstream []string  `json:"downstream,omitempty"`
}

// LinkView is a read-only copy of a link.
type LinkView struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	FromNode string `json:"from_node"`
	ToNode   string `json:"to_node"`
	Type     string `json:"type"`
}

// State is a complete read-only copy of a store.
type State struct {
	Nodes []NodeView `json:"nodes"`
	Links []LinkView `json:"links"`
}

// State copies the whole graph. Two states are deeply equal exactly when the
// graphs are indistinguishable through the public API.
func (s *Store) State() State {
	st := State{
		Nodes: make([]NodeView, 0, s.nodes.Len()),
		Links: make([]LinkView, 0, s.links.Len()),
	}
	for _, n := range s.nodes.All() {
		st.Nodes = append(st.Nodes, s.NodeView(n))
	}
	for _, l := range s.links.All() {
		st.Links = append(st.Links, s.LinkView(l))
	}
	return st
}

// NodeView copies one node's state.
func (s *Store) NodeView(n *Node) NodeView {
	v := NodeView{
		ID:       n.id.String(),
		Name:     n.name,
		Kind:     n.KindName(),
		Ready:    n.ready,
		Dirty:    n.dirty,
		Revision: n.rev,
		Required: n.required,
		Inputs:   s.pinViews(n.inputs),
		Outputs:  s.pinViews(n.outputs),
	}
	for _, id := range n.Upstream() {
		v.Upstream = append(v.Upstream, id.String())
	}
	for _, id := range n.Downstream() {
		v.Downstream = append(v.Downstream, id.String())
	}
	return v
}

func (s *Store) pinViews(ids []PinID) []PinView {
	out := make([]PinView, len(ids))
	for i, id := range ids {
		p := s.mustPin(id)
		out[i] = PinView{
			ID:        p.id.String(),
			Name:      p.name,
			Direction: p.dir.String(),
			Type:      string(p.typ),
			Slot:      p.slot,
			Links:     p.links,
		}
	}
	return out
}

// LinkView copies one link.
func (s *Store) LinkView(l *Link) LinkView {
	return LinkView{
		ID:       l.id.String(),
		From:     l.src.String(),
		To:       l.dst.String(),
		FromNode: l.srcNode.String(),
		ToNode:   l.dstNode.String(),
		Type:     string(s.mustPin(l.dst).typ),
	}
}

// Snapshot builds a layered DAG of the current graph. Each node's row is the
// length of the longest upstream chain leading to it, so sources sit in row 0
// and every link points to a higher row.
//
// DAG node IDs are NodeID strings. Node metadata carries "name", "kind",
// "ready" and "dirty"; edge metadata carries "link", "from_pin", "to_pin",
// "type" and "slot".
func (s *Store) Snapshot() *dag.DAG {
	g := dag.New(dag.Metadata{"nodes": s.nodes.Len(), "links": s.links.Len()})
	for _, n := range s.nodes.All() {
		_ = g.AddNode(dag.Node{
			ID: n.id.String(),
			Meta: dag.Metadata{
				"name":  n.name,
				"kind":  n.KindName(),
				"ready": n.ready,
				"dirty": n.dirty,
			},
		})
	}
	for _, l := range s.links.All() {
		src, dst := s.mustPin(l.src), s.mustPin(l.dst)
		_ = g.AddEdge(dag.Edge{
			From: l.srcNode.String(),
			To:   l.dstNode.String(),
			Meta: dag.Metadata{
				"link":     l.id.String(),
				"from_pin": src.name,
				"to_pin":   dst.name,
				"type":     string(dst.typ),
				"slot":     dst.slot,
			},
		})
	}
	g.AssignLayers()
	return g
}
