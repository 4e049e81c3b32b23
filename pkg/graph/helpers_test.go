package graph

import (
	"context"
	"testing"
)

const (
	tNoise TypeTag = "Noise3D"
	tImage TypeTag = "Image"
)

// mockKind records every call the store makes into it.
type mockKind struct {
	name     string
	layout   Layout
	required int // negative: all inputs

	reject       func(Attachment) error
	recomputeErr error

	attached   map[int]NodeID
	detached   int
	recomputes int
	dirties    int
	lastRev    uint64
}

func (m *mockKind) Kind() string   { return m.name }
func (m *mockKind) Layout() Layout { return m.layout }

func (m *mockKind) RequiredInputCount() int {
	if m.required < 0 {
		return len(m.layout.Inputs)
	}
	return m.required
}

func (m *mockKind) OnSourceAttached(a Attachment, commit bool) error {
	if m.reject != nil {
		if err := m.reject(a); err != nil {
			return err
		}
	}
	if commit {
		m.attached[a.DestSlot] = a.SourceNode
	}
	return nil
}

func (m *mockKind) OnSourceDetached(a Attachment) {
	delete(m.attached, a.DestSlot)
	m.detached++
}

func (m *mockKind) Recompute(_ context.Context, rev uint64) error {
	m.recomputes++
	m.lastRev = rev
	return m.recomputeErr
}

func (m *mockKind) OnDirty() { m.dirties++ }

func newMock(name string, inputs, outputs []PinSpec) *mockKind {
	return &mockKind{
		name:     name,
		layout:   Layout{Inputs: inputs, Outputs: outputs},
		required: -1,
		attached: make(map[int]NodeID),
	}
}

func sourceKind() *mockKind {
	return newMock("source", nil, []PinSpec{{Name: "out", Type: tNoise}})
}

func unaryKind() *mockKind {
	return newMock("unary", []PinSpec{{Name: "in", Type: tNoise}}, []PinSpec{{Name: "out", Type: tNoise}})
}

func binaryKind() *mockKind {
	return newMock("binary",
		[]PinSpec{{Name: "a", Type: tNoise}, {Name: "b", Type: tNoise}},
		[]PinSpec{{Name: "out", Type: tNoise}})
}

func sinkKind() *mockKind {
	return newMock("sink", []PinSpec{{Name: "in", Type: tImage}}, nil)
}

func outPin(t *testing.T, s *Store, id NodeID, slot int) PinID {
	t.Helper()
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("node %v not found", id)
	}
	p, ok := n.Output(slot)
	if !ok {
		t.Fatalf("node %q has no output %d", n.Name(), slot)
	}
	return p
}

func inPin(t *testing.T, s *Store, id NodeID, slot int) PinID {
	t.Helper()
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("node %v not found", id)
	}
	p, ok := n.Input(slot)
	if !ok {
		t.Fatalf("node %q has no input %d", n.Name(), slot)
	}
	return p
}

// link commits from.out[0] -> to.in[slot] and fails the test on error.
func link(t *testing.T, s *Store, from, to NodeID, slot int) LinkID {
	t.Helper()
	id, err := s.TryConnect(outPin(t, s, from, 0), inPin(t, s, to, slot), true)
	if err != nil {
		t.Fatalf("TryConnect: %v", err)
	}
	return id
}

func node(t *testing.T, s *Store, id NodeID) *Node {
	t.Helper()
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("node %v not found", id)
	}
	return n
}

func tick(t *testing.T, s *Store) TickStats {
	t.Helper()
	stats, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	return stats
}

func mustCheck(t *testing.T, s *Store) {
	t.Helper()
	if err := s.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}
