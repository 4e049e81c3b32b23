package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
)

func TestAddNode(t *testing.T) {
	s := New()
	src := s.AddNode("src", sourceKind())
	mid := s.AddNode("mid", unaryKind())

	if n := node(t, s, src); !n.IsReady() || !n.IsDirty() {
		t.Errorf("source: ready=%v dirty=%v, want ready and dirty", n.IsReady(), n.IsDirty())
	}
	n := node(t, s, mid)
	if n.IsReady() || !n.IsDirty() {
		t.Errorf("mid: ready=%v dirty=%v, want unready and dirty", n.IsReady(), n.IsDirty())
	}
	if len(n.Inputs()) != 1 || len(n.Outputs()) != 1 {
		t.Fatalf("mid pins = %d/%d, want 1/1", len(n.Inputs()), len(n.Outputs()))
	}
	in, _ := s.Pin(n.Inputs()[0])
	if in.Owner() != mid || !in.IsInput() || in.Slot() != 0 || in.Type() != tNoise || in.IsConnected() {
		t.Errorf("input pin = %+v", in)
	}
	if s.NodeCount() != 2 || s.LinkCount() != 0 {
		t.Errorf("counts = %d nodes %d links", s.NodeCount(), s.LinkCount())
	}
	mustCheck(t, s)
}

func TestAddNodeNilKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AddNode(nil) did not panic")
		}
	}()
	New().AddNode("x", nil)
}

func TestTryConnectOrientation(t *testing.T) {
	s := New()
	a := s.AddNode("a", sourceKind())
	b := s.AddNode("b", unaryKind())

	// Input first, output second.
	id, err := s.TryConnect(inPin(t, s, b, 0), outPin(t, s, a, 0), true)
	if err != nil {
		t.Fatalf("TryConnect: %v", err)
	}
	l, ok := s.Link(id)
	if !ok {
		t.Fatal("link not found")
	}
	if l.Source() != outPin(t, s, a, 0) || l.Dest() != inPin(t, s, b, 0) {
		t.Errorf("link %v -> %v is not oriented output to input", l.Source(), l.Dest())
	}
	if l.SourceNode() != a || l.DestNode() != b {
		t.Errorf("link nodes = %v -> %v, want %v -> %v", l.SourceNode(), l.DestNode(), a, b)
	}
	mustCheck(t, s)
}

func TestTryConnectRejections(t *testing.T) {
	type fixture struct {
		s        *Store
		a, b     NodeID // source, unary
		c        NodeID // unary fed by b
		sink     NodeID
		pinA     PinID
		pinB     PinID
		stalePin PinID
	}
	setup := func(t *testing.T) fixture {
		s := New()
		f := fixture{s: s}
		f.a = s.AddNode("a", sourceKind())
		f.b = s.AddNode("b", unaryKind())
		f.c = s.AddNode("c", unaryKind())
		f.sink = s.AddNode("sink", sinkKind())
		link(t, s, f.a, f.b, 0)
		link(t, s, f.b, f.c, 0)

		gone := s.AddNode("gone", sourceKind())
		f.stalePin = outPin(t, s, gone, 0)
		if err := s.RemoveNode(gone); err != nil {
			t.Fatal(err)
		}
		return f
	}

	tests := []struct {
		name string
		pins func(*testing.T, fixture) (PinID, PinID)
		want error
	}{
		{
			name: "unknown pin",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return f.stalePin, inPin(t, f.s, f.b, 0) },
			want: ErrUnknownPin,
		},
		{
			name: "zero pin",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return outPin(t, f.s, f.a, 0), PinID{} },
			want: ErrUnknownPin,
		},
		{
			name: "same node",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return outPin(t, f.s, f.c, 0), inPin(t, f.s, f.c, 0) },
			want: ErrSameNode,
		},
		{
			name: "two outputs",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return outPin(t, f.s, f.a, 0), outPin(t, f.s, f.c, 0) },
			want: ErrDirectionMismatch,
		},
		{
			name: "two inputs",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return inPin(t, f.s, f.b, 0), inPin(t, f.s, f.sink, 0) },
			want: ErrDirectionMismatch,
		},
		{
			name: "type mismatch",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return outPin(t, f.s, f.c, 0), inPin(t, f.s, f.sink, 0) },
			want: ErrTypeMismatch,
		},
		{
			name: "destination taken",
			pins: func(t *testing.T, f fixture) (PinID, PinID) { return outPin(t, f.s, f.a, 0), inPin(t, f.s, f.c, 0) },
			want: ErrDestinationAlreadyConnected,
		},
	}

	for _, tt := range tests {
		for _, commit := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/commit=%v", tt.name, commit), func(t *testing.T) {
				f := setup(t)
				x, y := tt.pins(t, f)
				before := f.s.State()

				id, err := f.s.TryConnect(x, y, commit)
				if !errors.Is(err, tt.want) {
					t.Fatalf("TryConnect error = %v, want %v", err, tt.want)
				}
				if !id.IsZero() {
					t.Errorf("TryConnect returned link %v on error", id)
				}
				if diff := cmp.Diff(before, f.s.State()); diff != "" {
					t.Errorf("state changed on rejected connect (-before +after):\n%s", diff)
				}
				mustCheck(t, f.s)
			})
		}
	}
}

func TestTryConnectRejectsCycle(t *testing.T) {
	s := New()
	a := s.AddNode("a", unaryKind())
	b := s.AddNode("b", unaryKind())
	c := s.AddNode("c", unaryKind())
	link(t, s, a, b, 0)
	link(t, s, b, c, 0)
	before := s.State()

	// c -> a closes a -> b -> c -> a.
	if _, err := s.TryConnect(outPin(t, s, c, 0), inPin(t, s, a, 0), true); !errors.Is(err, ErrWouldCreateCycle) {
		t.Fatalf("TryConnect(c -> a) = %v, want %v", err, ErrWouldCreateCycle)
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}

	// The reverse direction adds a parallel path, not a cycle.
	d := s.AddNode("d", binaryKind())
	link(t, s, a, d, 0)
	link(t, s, c, d, 1)
	mustCheck(t, s)
}

func TestTryConnectIncompatibleSourceKind(t *testing.T) {
	picky := unaryKind()
	picky.reject = func(a Attachment) error {
		if a.Source.Kind() == "forbidden" {
			return errors.New("forbidden sources not accepted")
		}
		return nil
	}

	s := New()
	ok := s.AddNode("ok", sourceKind())
	bad := s.AddNode("bad", newMock("forbidden", nil, []PinSpec{{Name: "out", Type: tNoise}}))
	dst := s.AddNode("dst", picky)
	before := s.State()

	for _, commit := range []bool{false, true} {
		_, err := s.TryConnect(outPin(t, s, bad, 0), inPin(t, s, dst, 0), commit)
		if !errors.Is(err, ErrIncompatibleSourceKind) {
			t.Fatalf("commit=%v: error = %v, want %v", commit, err, ErrIncompatibleSourceKind)
		}
		if errs.GetCode(err) != errs.ErrCodeIncompatibleSourceKind {
			t.Errorf("code = %q", errs.GetCode(err))
		}
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
	if len(picky.attached) != 0 {
		t.Errorf("kind attached %v after rejection", picky.attached)
	}

	link(t, s, ok, dst, 0)
	if picky.attached[0] != ok {
		t.Errorf("kind attached %v, want slot 0 <- %v", picky.attached, ok)
	}
}

func TestTryConnectPreview(t *testing.T) {
	s := New()
	a := s.AddNode("a", sourceKind())
	bk := unaryKind()
	b := s.AddNode("b", bk)
	tick(t, s)
	before := s.State()

	for i := range 3 {
		id, err := s.TryConnect(outPin(t, s, a, 0), inPin(t, s, b, 0), false)
		if err != nil {
			t.Fatalf("preview %d: %v", i, err)
		}
		if !id.IsZero() {
			t.Errorf("preview %d returned link %v", i, id)
		}
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("preview changed state (-before +after):\n%s", diff)
	}
	if len(bk.attached) != 0 {
		t.Errorf("preview committed attachment %v", bk.attached)
	}

	// The preview predicts the commit.
	if _, err := s.TryConnect(outPin(t, s, a, 0), inPin(t, s, b, 0), true); err != nil {
		t.Fatalf("commit after preview: %v", err)
	}
	if s.LinkCount() != 1 {
		t.Errorf("LinkCount = %d, want 1", s.LinkCount())
	}
}

func TestFanOut(t *testing.T) {
	s := New()
	src := s.AddNode("src", sourceKind())
	var sinks []NodeID
	var links []LinkID
	for i := range 4 {
		id := s.AddNode(fmt.Sprintf("u%d", i), unaryKind())
		sinks = append(sinks, id)
		links = append(links, link(t, s, src, id, 0))
	}

	out, _ := s.Pin(outPin(t, s, src, 0))
	if out.LinkCount() != 4 {
		t.Errorf("output LinkCount = %d, want 4", out.LinkCount())
	}
	if got := len(node(t, s, src).Downstream()); got != 4 {
		t.Errorf("downstream = %d, want 4", got)
	}

	if err := s.Disconnect(links[1], true); err != nil {
		t.Fatal(err)
	}
	if out.LinkCount() != 3 {
		t.Errorf("output LinkCount after disconnect = %d, want 3", out.LinkCount())
	}
	for i, id := range sinks {
		want := i != 1
		if got := node(t, s, id).IsReady(); got != want {
			t.Errorf("u%d ready = %v, want %v", i, got, want)
		}
	}
	mustCheck(t, s)
}

func TestParallelLinksBetweenSameNodes(t *testing.T) {
	s := New()
	a := s.AddNode("a", sourceKind())
	b := s.AddNode("b", binaryKind())
	l0 := link(t, s, a, b, 0)
	link(t, s, a, b, 1)

	if err := s.Disconnect(l0, true); err != nil {
		t.Fatal(err)
	}
	if got := node(t, s, b).Upstream(); len(got) != 1 || got[0] != a {
		t.Errorf("upstream after one of two links removed = %v, want [%v]", got, a)
	}
	if node(t, s, b).IsReady() {
		t.Error("b ready with slot 0 empty")
	}
	mustCheck(t, s)
}

func TestDisconnect(t *testing.T) {
	s := New()
	a := s.AddNode("a", sourceKind())
	bk := unaryKind()
	b := s.AddNode("b", bk)
	id := link(t, s, a, b, 0)
	tick(t, s)

	before := s.State()
	if err := s.Disconnect(id, false); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("preview changed state (-before +after):\n%s", diff)
	}

	if err := s.Disconnect(id, true); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Link(id); ok {
		t.Error("link still resolves")
	}
	if bk.detached != 1 || len(bk.attached) != 0 {
		t.Errorf("detached=%d attached=%v", bk.detached, bk.attached)
	}
	if n := node(t, s, b); n.IsReady() || !n.IsDirty() {
		t.Errorf("b ready=%v dirty=%v, want unready and dirty", n.IsReady(), n.IsDirty())
	}

	for _, commit := range []bool{false, true} {
		if err := s.Disconnect(id, commit); !errors.Is(err, ErrUnknownLink) {
			t.Errorf("Disconnect(stale, %v) = %v, want %v", commit, err, ErrUnknownLink)
		}
	}
	mustCheck(t, s)
}

func TestReadinessTransitive(t *testing.T) {
	s := New()
	a := s.AddNode("a", sourceKind())
	b := s.AddNode("b", unaryKind())
	c := s.AddNode("c", unaryKind())

	// Wire the tail first: c has its input but b is not ready yet.
	link(t, s, b, c, 0)
	if node(t, s, c).IsReady() {
		t.Fatal("c ready before b")
	}

	ab := link(t, s, a, b, 0)
	if !node(t, s, b).IsReady() || !node(t, s, c).IsReady() {
		t.Fatal("readiness did not cascade to c")
	}

	if err := s.Disconnect(ab, true); err != nil {
		t.Fatal(err)
	}
	if node(t, s, b).IsReady() || node(t, s, c).IsReady() {
		t.Error("unreadiness did not cascade to c")
	}
	mustCheck(t, s)
}

func TestOptionalInputs(t *testing.T) {
	k := binaryKind()
	k.required = 1

	s := New()
	a := s.AddNode("a", sourceKind())
	b := s.AddNode("b", sourceKind())
	add := s.AddNode("add", k)
	if got := node(t, s, add).RequiredInputCount(); got != 1 {
		t.Fatalf("RequiredInputCount = %d, want 1", got)
	}

	link(t, s, a, add, 0)
	if !node(t, s, add).IsReady() {
		t.Fatal("not ready with required input connected")
	}
	tick(t, s)

	opt := link(t, s, b, add, 1)
	if n := node(t, s, add); !n.IsReady() || !n.IsDirty() {
		t.Errorf("after optional connect ready=%v dirty=%v", n.IsReady(), n.IsDirty())
	}
	tick(t, s)
	if err := s.Disconnect(opt, true); err != nil {
		t.Fatal(err)
	}
	if n := node(t, s, add); !n.IsReady() || !n.IsDirty() {
		t.Errorf("after optional disconnect ready=%v dirty=%v", n.IsReady(), n.IsDirty())
	}
	mustCheck(t, s)
}

func TestRequiredInputCountClamped(t *testing.T) {
	k := unaryKind()
	k.required = 5
	s := New()
	id := s.AddNode("u", k)
	if got := node(t, s, id).RequiredInputCount(); got != 1 {
		t.Errorf("RequiredInputCount = %d, want 1", got)
	}
}

func TestRemoveNode(t *testing.T) {
	s := New()
	a := s.AddNode("a", sourceKind())
	bk := unaryKind()
	b := s.AddNode("b", bk)
	c := s.AddNode("c", unaryKind())
	d := s.AddNode("d", unaryKind())
	link(t, s, a, b, 0)
	link(t, s, b, c, 0)
	link(t, s, b, d, 0)
	pins := node(t, s, b).Inputs()
	tick(t, s)

	if err := s.RemoveNode(b); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Node(b); ok {
		t.Error("removed node still resolves")
	}
	if _, ok := s.Pin(pins[0]); ok {
		t.Error("removed node's pin still resolves")
	}
	if s.LinkCount() != 0 {
		t.Errorf("LinkCount = %d, want 0", s.LinkCount())
	}
	if got := node(t, s, a).Downstream(); len(got) != 0 {
		t.Errorf("a downstream = %v", got)
	}
	for _, id := range []NodeID{c, d} {
		if n := node(t, s, id); n.IsReady() || !n.IsDirty() || len(n.Upstream()) != 0 {
			t.Errorf("%s ready=%v dirty=%v upstream=%v", n.Name(), n.IsReady(), n.IsDirty(), n.Upstream())
		}
	}
	if out, _ := s.Pin(outPin(t, s, a, 0)); out.LinkCount() != 0 {
		t.Errorf("a out LinkCount = %d", out.LinkCount())
	}
	if bk.detached != 1 {
		t.Errorf("removed node's kind detached %d sources, want 1", bk.detached)
	}

	if err := s.RemoveNode(b); !errors.Is(err, ErrUnknownID) {
		t.Errorf("second RemoveNode = %v, want %v", err, ErrUnknownID)
	}
	mustCheck(t, s)
}

func TestStaleIDs(t *testing.T) {
	s := New()
	old := s.AddNode("old", sourceKind())
	oldPin := outPin(t, s, old, 0)
	if err := s.RemoveNode(old); err != nil {
		t.Fatal(err)
	}

	// The slot is reused with a fresh generation.
	fresh := s.AddNode("fresh", sourceKind())
	if fresh.Index != old.Index || fresh.Gen == old.Gen {
		t.Fatalf("fresh = %v, old = %v: slot not reused", fresh, old)
	}
	if _, ok := s.Node(old); ok {
		t.Error("stale node id resolves")
	}
	if _, ok := s.Pin(oldPin); ok {
		t.Error("stale pin id resolves")
	}
	if err := s.MarkDirty(old); !errors.Is(err, ErrUnknownID) {
		t.Errorf("MarkDirty(stale) = %v", err)
	}
	if err := s.SetParam(old, "x", 1); !errors.Is(err, ErrUnknownID) {
		t.Errorf("SetParam(stale) = %v", err)
	}

	u := s.AddNode("u", unaryKind())
	if _, err := s.TryConnect(oldPin, inPin(t, s, u, 0), false); !errors.Is(err, ErrUnknownPin) {
		t.Errorf("TryConnect(stale pin) = %v", err)
	}
}

type knobKind struct {
	*mockKind
	gain float64
}

func (k *knobKind) SetParam(name string, value any) error {
	if name != "gain" {
		return fmt.Errorf("unknown parameter %q", name)
	}
	v, ok := value.(float64)
	if !ok {
		return errs.New(errs.ErrCodeInvalidParam, "gain must be a number")
	}
	k.gain = v
	return nil
}

func TestSetParam(t *testing.T) {
	s := New()
	k := &knobKind{mockKind: sourceKind()}
	src := s.AddNode("src", k)
	u := s.AddNode("u", unaryKind())
	link(t, s, src, u, 0)
	tick(t, s)
	rev := node(t, s, src).Revision()

	if err := s.SetParam(src, "gain", 2.5); err != nil {
		t.Fatal(err)
	}
	if k.gain != 2.5 {
		t.Errorf("gain = %v", k.gain)
	}
	if !node(t, s, src).IsDirty() || !node(t, s, u).IsDirty() {
		t.Error("SetParam did not propagate dirty")
	}
	if node(t, s, src).Revision() <= rev {
		t.Error("revision not bumped")
	}

	tests := []struct {
		name  string
		id    NodeID
		param string
		value any
		code  errs.Code
	}{
		{"unknown param", src, "bogus", 1.0, errs.ErrCodeInvalidParam},
		{"coded error kept", src, "gain", "loud", errs.ErrCodeInvalidParam},
		{"not configurable", u, "gain", 1.0, errs.ErrCodeInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetParam(tt.id, tt.param, tt.value)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("SetParam error = %v (code %q), want code %q", err, got, tt.code)
			}
		})
	}
}

func TestFindPinAndNode(t *testing.T) {
	s := New()
	b := s.AddNode("blend", binaryKind())

	if p, ok := s.FindPin(b, "b"); !ok || p != inPin(t, s, b, 1) {
		t.Errorf("FindPin(b) = %v, %v", p, ok)
	}
	if p, ok := s.FindPin(b, "out"); !ok || p != outPin(t, s, b, 0) {
		t.Errorf("FindPin(out) = %v, %v", p, ok)
	}
	if _, ok := s.FindPin(b, "missing"); ok {
		t.Error("FindPin(missing) found a pin")
	}
	if id, ok := s.FindNode("blend"); !ok || id != b {
		t.Errorf("FindNode = %v, %v", id, ok)
	}
	if _, ok := s.FindNode("nope"); ok {
		t.Error("FindNode(nope) found a node")
	}
}
