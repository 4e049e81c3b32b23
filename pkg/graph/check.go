package graph

import errs "github.com/matzehuels/noisegraph/pkg/errors"

// Check verifies the store's internal bookkeeping: every link resolves to
// live pins on live, distinct nodes with matching types; pin link counts
// match the links attached to them; relation sets are exact duals of the
// link set; readiness matches its definition; and the graph is acyclic.
//
// A non-nil result means a bug in the store, not in the caller. All mutation
// goes through the store, so Check should never fail.
func (s *Store) Check() error {
	pinCount := make(map[PinID]int)
	pairs := make(map[[2]NodeID]int)

	for _, l := range s.links.All() {
		src, okS := s.pins.Get(l.src.ID)
		dst, okD := s.pins.Get(l.dst.ID)
		if !okS || !okD {
			return errs.New(errs.ErrCodeInternal, "link %v references a missing pin", l.id)
		}
		if !s.nodes.Contains(src.owner.ID) || !s.nodes.Contains(dst.owner.ID) {
			return errs.New(errs.ErrCodeInternal, "link %v references a missing node", l.id)
		}
		if src.owner != l.srcNode || dst.owner != l.dstNode {
			return errs.New(errs.ErrCodeInternal, "link %v disagrees with its pins' owners", l.id)
		}
		if src.dir != Output || dst.dir != Input {
			return errs.New(errs.ErrCodeInternal, "link %v is not output-to-input", l.id)
		}
		if src.typ != dst.typ {
			return errs.New(errs.ErrCodeInternal, "link %v joins %s to %s", l.id, src.typ, dst.typ)
		}
		if l.srcNode == l.dstNode {
			return errs.New(errs.ErrCodeInternal, "link %v is a self-loop", l.id)
		}
		pinCount[l.src]++
		pinCount[l.dst]++
		pairs[[2]NodeID{l.srcNode, l.dstNode}]++
	}

	for _, p := range s.pins.All() {
		if !s.nodes.Contains(p.owner.ID) {
			return errs.New(errs.ErrCodeInternal, "pin %v is owned by a missing node", p.id)
		}
		if p.links != pinCount[p.id] || len(s.pinLinks[p.id]) != p.links {
			return errs.New(errs.ErrCodeInternal, "pin %v counts %d links, found %d", p.id, p.links, pinCount[p.id])
		}
		if p.dir == Input && p.links > 1 {
			return errs.New(errs.ErrCodeInternal, "input pin %v has %d sources", p.id, p.links)
		}
	}

	for _, n := range s.nodes.All() {
		for up, c := range n.upstream {
			if pairs[[2]NodeID{up, n.id}] != c {
				return errs.New(errs.ErrCodeInternal, "node %v upstream %v counts %d", n.id, up, c)
			}
			peer, ok := s.nodes.Get(up.ID)
			if !ok || peer.downstream[n.id] != c {
				return errs.New(errs.ErrCodeInternal, "node %v upstream %v has no dual", n.id, up)
			}
		}
		for down, c := range n.downstream {
			if pairs[[2]NodeID{n.id, down}] != c {
				return errs.New(errs.ErrCodeInternal, "node %v downstream %v counts %d", n.id, down, c)
			}
		}
	}
	for pair, c := range pairs {
		if n, ok := s.nodes.Get(pair[1].ID); !ok || n.upstream[pair[0]] != c {
			return errs.New(errs.ErrCodeInternal, "links %v -> %v missing from relation sets", pair[0], pair[1])
		}
	}

	for _, n := range s.nodes.All() {
		if want := s.inputsConnected(n) && s.upstreamReady(n); n.ready != want {
			return errs.New(errs.ErrCodeInternal, "node %v ready=%v, want %v", n.id, n.ready, want)
		}
	}

	if _, ok := s.order(); !ok {
		return errs.New(errs.ErrCodeInternal, "committed links form a cycle")
	}
	return nil
}

// MustCheck panics if [Store.Check] fails.
func (s *Store) MustCheck() {
	if err := s.Check(); err != nil {
		panic(err)
	}
}
