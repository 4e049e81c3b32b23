package graph

import (
	"fmt"
	"slices"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/ident"
	"github.com/matzehuels/noisegraph/pkg/observability"
)

// Store owns the nodes, pins and links of one graph and is the only mutator
// of its topology.
//
// The zero value is not usable - use New to create a Store.
// A Store is not safe for concurrent use without external synchronization.
type Store struct {
	nodes *ident.Registry[*Node]
	pins  *ident.Registry[*Pin]
	links *ident.Registry[*Link]

	// pinLinks indexes links by both endpoint pins.
	pinLinks map[PinID][]LinkID

	hooks observability.GraphHooks
}

// Option configures a Store.
type Option func(*Store)

// WithHooks sets the hooks the store reports to. By default a store uses the
// hooks registered with [observability.SetGraphHooks] at creation time.
func WithHooks(h observability.GraphHooks) Option {
	return func(s *Store) {
		if h != nil {
			s.hooks = h
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:    ident.New[*Node](),
		pins:     ident.New[*Pin](),
		links:    ident.New[*Link](),
		pinLinks: make(map[PinID][]LinkID),
		hooks:    observability.Graph(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Node lifecycle
// =============================================================================

// AddNode registers a node computing with k and returns its id.
// The node starts dirty; it starts ready only if it has no required inputs.
// AddNode panics if k is nil.
func (s *Store) AddNode(name string, k Kind) NodeID {
	if k == nil {
		panic("graph: AddNode with nil kind")
	}
	layout := k.Layout()
	n := &Node{
		name:       name,
		kind:       k,
		dirty:      true,
		rev:        1,
		upstream:   make(map[NodeID]int),
		downstream: make(map[NodeID]int),
	}
	n.id = NodeID{s.nodes.Insert(n)}

	n.inputs = s.addPins(n.id, Input, layout.Inputs)
	n.outputs = s.addPins(n.id, Output, layout.Outputs)

	n.required = len(n.inputs)
	if r, ok := k.(InputRequirer); ok {
		n.required = min(max(r.RequiredInputCount(), 0), len(n.inputs))
	}
	n.ready = n.required == 0

	s.hooks.OnNodeAdded(observability.NodeEvent{ID: n.id.String(), Name: name, Kind: k.Kind()})
	return n.id
}

func (s *Store) addPins(owner NodeID, dir Direction, specs []PinSpec) []PinID {
	ids := make([]PinID, len(specs))
	for i, spec := range specs {
		p := &Pin{owner: owner, name: spec.Name, dir: dir, typ: spec.Type, slot: i}
		p.id = PinID{s.pins.Insert(p)}
		ids[i] = p.id
	}
	return ids
}

// RemoveNode severs every link incident to the node, then removes the node
// and its pins. Former downstream peers have their readiness recomputed.
// It returns ErrUnknownID if the node does not exist.
func (s *Store) RemoveNode(id NodeID) error {
	n, ok := s.nodes.Get(id.ID)
	if !ok {
		return errs.New(errs.ErrCodeUnknownID, "node %v not found", id)
	}
	for _, pid := range n.pins() {
		for _, lid := range slices.Clone(s.pinLinks[pid]) {
			l, _ := s.links.Get(lid.ID)
			s.unlink(l)
			s.hooks.OnDisconnect(observability.DisconnectEvent{Link: lid.String(), Commit: true})
		}
	}
	for _, pid := range n.pins() {
		s.pins.Remove(pid.ID)
		delete(s.pinLinks, pid)
	}
	s.nodes.Remove(id.ID)
	s.hooks.OnNodeRemoved(observability.NodeEvent{ID: id.String(), Name: n.name, Kind: n.KindName()})
	return nil
}

// =============================================================================
// Connect / Disconnect
// =============================================================================

// plan is a validated, oriented connect request.
type plan struct {
	src, dst         *Pin
	srcNode, dstNode *Node
	att              Attachment
}

// TryConnect validates a link between pins a and b, in either order, and
// commits it when commit is true.
//
// With commit false the call is a preview: it runs every check, including
// the destination kind's trial attach, and returns the zero LinkID on success
// without changing anything. With commit true a successful call creates the
// link, updates link counts and relation sets, then recomputes readiness of
// the destination and marks it dirty.
//
// Every error leaves the graph unchanged.
func (s *Store) TryConnect(a, b PinID, commit bool) (LinkID, error) {
	p, err := s.validate(a, b)
	if err != nil {
		s.hooks.OnConnect(observability.ConnectEvent{From: a.String(), To: b.String(), Commit: commit, Err: err})
		return LinkID{}, err
	}
	if !commit {
		s.hooks.OnConnect(observability.ConnectEvent{From: p.src.id.String(), To: p.dst.id.String()})
		return LinkID{}, nil
	}
	if err := p.dstNode.kind.OnSourceAttached(p.att, true); err != nil {
		err = incompatible(p, err)
		s.hooks.OnConnect(observability.ConnectEvent{From: p.src.id.String(), To: p.dst.id.String(), Commit: true, Err: err})
		return LinkID{}, err
	}

	p.src.addLink()
	p.dst.addLink()
	p.srcNode.downstream[p.dstNode.id]++
	p.dstNode.upstream[p.srcNode.id]++

	l := &Link{src: p.src.id, dst: p.dst.id, srcNode: p.srcNode.id, dstNode: p.dstNode.id}
	l.id = LinkID{s.links.Insert(l)}
	s.pinLinks[l.src] = append(s.pinLinks[l.src], l.id)
	s.pinLinks[l.dst] = append(s.pinLinks[l.dst], l.id)

	s.recomputeReadiness(p.dstNode)
	s.markDirty(p.dstNode)

	s.hooks.OnConnect(observability.ConnectEvent{
		From:   p.src.id.String(),
		To:     p.dst.id.String(),
		Link:   l.id.String(),
		Commit: true,
	})
	return l.id, nil
}

func (s *Store) validate(a, b PinID) (*plan, error) {
	pa, okA := s.pins.Get(a.ID)
	pb, okB := s.pins.Get(b.ID)
	switch {
	case !okA:
		return nil, errs.New(errs.ErrCodeUnknownPin, "pin %v not found", a)
	case !okB:
		return nil, errs.New(errs.ErrCodeUnknownPin, "pin %v not found", b)
	}
	if pa.owner == pb.owner {
		return nil, errs.New(errs.ErrCodeSameNode, "pins %v and %v both belong to node %v", a, b, pa.owner)
	}
	if pa.dir == pb.dir {
		return nil, errs.New(errs.ErrCodeDirectionMismatch, "pins %v and %v are both %ss", a, b, pa.dir)
	}

	src, dst := pa, pb
	if src.IsInput() {
		src, dst = dst, src
	}
	if src.typ != dst.typ {
		return nil, errs.New(errs.ErrCodeTypeMismatch, "output %s carries %s, input %s expects %s", src.name, src.typ, dst.name, dst.typ)
	}
	if dst.IsConnected() {
		return nil, errs.New(errs.ErrCodeDestinationAlreadyConnected, "input %v already has a source", dst.id)
	}

	srcNode := s.mustNode(src.owner)
	dstNode := s.mustNode(dst.owner)
	if s.reaches(dstNode, srcNode.id) {
		return nil, errs.New(errs.ErrCodeWouldCreateCycle, "node %q already feeds node %q", dstNode.name, srcNode.name)
	}

	p := &plan{
		src:     src,
		dst:     dst,
		srcNode: srcNode,
		dstNode: dstNode,
		att: Attachment{
			Source:     srcNode.kind,
			SourceNode: srcNode.id,
			SourceSlot: src.slot,
			DestSlot:   dst.slot,
			Type:       dst.typ,
		},
	}
	if err := dstNode.kind.OnSourceAttached(p.att, false); err != nil {
		return nil, incompatible(p, err)
	}
	return p, nil
}

func incompatible(p *plan, cause error) error {
	if errs.Is(cause, errs.ErrCodeIncompatibleSourceKind) {
		return cause
	}
	return errs.Wrap(errs.ErrCodeIncompatibleSourceKind, cause, "%s rejects %s as source for %s",
		p.dstNode.KindName(), p.srcNode.KindName(), p.dst.name)
}

// reaches reports whether target is from, or is reachable from it by
// following downstream relations.
func (s *Store) reaches(from *Node, target NodeID) bool {
	if from.id == target {
		return true
	}
	seen := map[NodeID]bool{from.id: true}
	stack := []NodeID{from.id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range s.mustNode(id).downstream {
			if next == target {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Disconnect removes a link when commit is true. With commit false it only
// checks that the link exists.
//
// On commit the destination kind is told to release the source, and the
// destination's readiness is recomputed (it may become unready and cascade).
// It returns ErrUnknownLink if the link does not exist.
func (s *Store) Disconnect(id LinkID, commit bool) error {
	l, ok := s.links.Get(id.ID)
	if !ok {
		err := errs.New(errs.ErrCodeUnknownLink, "link %v not found", id)
		s.hooks.OnDisconnect(observability.DisconnectEvent{Link: id.String(), Commit: commit, Err: err})
		return err
	}
	if commit {
		s.unlink(l)
	}
	s.hooks.OnDisconnect(observability.DisconnectEvent{Link: id.String(), Commit: commit})
	return nil
}

func (s *Store) unlink(l *Link) {
	src := s.mustPin(l.src)
	dst := s.mustPin(l.dst)
	srcNode := s.mustNode(l.srcNode)
	dstNode := s.mustNode(l.dstNode)

	src.removeLink()
	dst.removeLink()
	decrement(srcNode.downstream, dstNode.id)
	decrement(dstNode.upstream, srcNode.id)

	dstNode.kind.OnSourceDetached(Attachment{
		Source:     srcNode.kind,
		SourceNode: srcNode.id,
		SourceSlot: src.slot,
		DestSlot:   dst.slot,
		Type:       dst.typ,
	})

	s.links.Remove(l.id.ID)
	s.pinLinks[l.src] = slices.DeleteFunc(s.pinLinks[l.src], func(id LinkID) bool { return id == l.id })
	s.pinLinks[l.dst] = slices.DeleteFunc(s.pinLinks[l.dst], func(id LinkID) bool { return id == l.id })

	s.recomputeReadiness(dstNode)
	s.markDirty(dstNode)
}

func decrement(m map[NodeID]int, id NodeID) {
	if m[id] <= 1 {
		delete(m, id)
		return
	}
	m[id]--
}

// =============================================================================
// Settings
// =============================================================================

// SetParam changes a setting on a configurable kind and marks the node dirty.
func (s *Store) SetParam(id NodeID, name string, value any) error {
	n, ok := s.nodes.Get(id.ID)
	if !ok {
		return errs.New(errs.ErrCodeUnknownID, "node %v not found", id)
	}
	c, ok := n.kind.(Configurable)
	if !ok {
		return errs.New(errs.ErrCodeInvalidParam, "%s node %q has no parameters", n.KindName(), n.name)
	}
	if err := c.SetParam(name, value); err != nil {
		if errs.GetCode(err) != "" {
			return err
		}
		return errs.Wrap(errs.ErrCodeInvalidParam, err, "set %s on %q", name, n.name)
	}
	s.markDirty(n)
	return nil
}

// =============================================================================
// Internal lookups
// =============================================================================

// mustNode resolves a node that a pin, link or relation set refers to.
// A miss means the store's bookkeeping is corrupt.
func (s *Store) mustNode(id NodeID) *Node {
	n, ok := s.nodes.Get(id.ID)
	if !ok {
		panic(fmt.Sprintf("graph: dangling reference to node %v", id))
	}
	return n
}

func (s *Store) mustPin(id PinID) *Pin {
	p, ok := s.pins.Get(id.ID)
	if !ok {
		panic(fmt.Sprintf("graph: dangling reference to pin %v", id))
	}
	return p
}
