package graph

import "slices"

// Node resolves a node id.
func (s *Store) Node(id NodeID) (*Node, bool) { return s.nodes.Get(id.ID) }

// Pin resolves a pin id.
func (s *Store) Pin(id PinID) (*Pin, bool) { return s.pins.Get(id.ID) }

// Link resolves a link id.
func (s *Store) Link(id LinkID) (*Link, bool) { return s.links.Get(id.ID) }

// Nodes returns all nodes in slot order. Slot order is not insertion order
// once nodes have been removed.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, s.nodes.Len())
	for _, n := range s.nodes.All() {
		out = append(out, n)
	}
	return out
}

// Links returns all links in slot order.
func (s *Store) Links() []*Link {
	out := make([]*Link, 0, s.links.Len())
	for _, l := range s.links.All() {
		out = append(out, l)
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (s *Store) NodeCount() int { return s.nodes.Len() }

// LinkCount returns the number of links in the graph.
func (s *Store) LinkCount() int { return s.links.Len() }

// PinLinks returns the links attached to a pin. An input pin has at most one.
func (s *Store) PinLinks(id PinID) []LinkID { return slices.Clone(s.pinLinks[id]) }

// FindPin looks up a pin on a node by name, inputs first.
func (s *Store) FindPin(node NodeID, name string) (PinID, bool) {
	n, ok := s.nodes.Get(node.ID)
	if !ok {
		return PinID{}, false
	}
	for _, pid := range n.pins() {
		if s.mustPin(pid).name == name {
			return pid, true
		}
	}
	return PinID{}, false
}

// FindNode returns the first node, in slot order, with the given name.
// Names are display labels and need not be unique.
func (s *Store) FindNode(name string) (NodeID, bool) {
	for id, n := range s.nodes.All() {
		if n.name == name {
			return NodeID{id}, true
		}
	}
	return NodeID{}, false
}
