package graph

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/noisegraph/pkg/ident"
)

// NodeID identifies a node in a [Store].
type NodeID struct{ ident.ID }

// PinID identifies a pin in a [Store].
type PinID struct{ ident.ID }

// LinkID identifies a link in a [Store].
type LinkID struct{ ident.ID }

// ParseNodeID parses the "index.gen" form produced by NodeID.String.
func ParseNodeID(s string) (NodeID, error) {
	id, err := ident.Parse(s)
	return NodeID{id}, err
}

// ParsePinID parses the "index.gen" form produced by PinID.String.
func ParsePinID(s string) (PinID, error) {
	id, err := ident.Parse(s)
	return PinID{id}, err
}

// ParseLinkID parses the "index.gen" form produced by LinkID.String.
func ParseLinkID(s string) (LinkID, error) {
	id, err := ident.Parse(s)
	return LinkID{id}, err
}

func compareID(a, b ident.ID) int {
	if c := cmp.Compare(a.Index, b.Index); c != 0 {
		return c
	}
	return cmp.Compare(a.Gen, b.Gen)
}

// sortedNodeIDs returns the keys of a relation set in slot order so that
// cascades visit peers deterministically.
func sortedNodeIDs(m map[NodeID]int) []NodeID {
	ids := slices.Collect(maps.Keys(m))
	slices.SortFunc(ids, func(a, b NodeID) int { return compareID(a.ID, b.ID) })
	return ids
}
