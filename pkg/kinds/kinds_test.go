package kinds_test

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/kinds"
)

func connect(t *testing.T, s *graph.Store, from, to graph.NodeID, input string) graph.LinkID {
	t.Helper()
	out, ok := s.FindPin(from, "out")
	if !ok {
		t.Fatalf("no output pin on %v", from)
	}
	in, ok := s.FindPin(to, input)
	if !ok {
		t.Fatalf("no input %q on %v", input, to)
	}
	id, err := s.TryConnect(out, in, true)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return id
}

// settle ticks until nothing is pending.
func settle(t *testing.T, s *graph.Store) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		stats, err := s.Tick(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if stats.Failed > 0 {
			t.Fatalf("tick failed: %+v", stats)
		}
		if stats.Settled() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("graph did not settle: %+v", stats)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSourceCompatibility(t *testing.T) {
	tests := []struct {
		src, dst string
		input    string
		want     errs.Code
	}{
		{"perlin3d", "scale", "in", ""},
		{"billow3d", "add", "b", ""},
		{"perlin3d", "slice", "in", ""},
		{"constant2d", "render", "field", ""},
		{"probe3d", "scale", "in", errs.ErrCodeIncompatibleSourceKind},
		{"probe3d", "add", "a", errs.ErrCodeIncompatibleSourceKind},
		{"perlin3d", "render", "field", errs.ErrCodeTypeMismatch},
		{"constant2d", "slice", "in", errs.ErrCodeTypeMismatch},
	}
	reg := kinds.Builtin()
	for _, tt := range tests {
		t.Run(tt.src+"->"+tt.dst, func(t *testing.T) {
			s := graph.New()
			srcKind, _ := reg.New(tt.src, nil)
			dstKind, _ := reg.New(tt.dst, nil)
			src := s.AddNode("src", srcKind)
			dst := s.AddNode("dst", dstKind)
			out, _ := s.FindPin(src, "out")
			in, _ := s.FindPin(dst, tt.input)

			for _, commit := range []bool{false, true} {
				_, err := s.TryConnect(out, in, commit)
				if got := errs.GetCode(err); got != tt.want {
					t.Errorf("commit=%v: code %q (%v), want %q", commit, got, err, tt.want)
				}
			}
		})
	}
}

func TestScaleAndSlice(t *testing.T) {
	s := graph.New()
	noise := kinds.NewPerlin3D()
	scale := kinds.NewScale()
	slice := kinds.NewSlice()
	if err := scale.SetParam("factor", 2); err != nil {
		t.Fatal(err)
	}
	if err := slice.SetParam("z", 0.25); err != nil {
		t.Fatal(err)
	}
	n := s.AddNode("noise", noise)
	sc := s.AddNode("scale", scale)
	sl := s.AddNode("slice", slice)
	connect(t, s, n, sc, "in")
	connect(t, s, sc, sl, "in")
	settle(t, s)

	base, scaled, cut := noise.Field3D(), scale.Field3D(), slice.Field2D()
	for _, p := range [][2]float64{{0.1, 0.2}, {0.33, 0.71}, {0.9, 0.05}} {
		want := 2 * base(p[0], p[1], 0.25)
		if got := scaled(p[0], p[1], 0.25); got != want {
			t.Errorf("scale%v = %v, want %v", p, got, want)
		}
		if got := cut(p[0], p[1]); got != want {
			t.Errorf("slice%v = %v, want %v", p, got, want)
		}
	}

	// A parameter change upstream reaches the slice on the next tick.
	if err := s.SetParam(sc, "factor", -1.0); err != nil {
		t.Fatal(err)
	}
	settle(t, s)
	if got, want := slice.Field2D()(0.3, 0.6), -base(0.3, 0.6, 0.25); got != want {
		t.Errorf("slice after factor change = %v, want %v", got, want)
	}
}

func TestAddSecondInputOptional(t *testing.T) {
	s := graph.New()
	a, b := kinds.NewPerlin3D(), kinds.NewPerlin3D()
	if err := b.SetParam("seed", 9); err != nil {
		t.Fatal(err)
	}
	add := kinds.NewAdd()
	na := s.AddNode("a", a)
	nb := s.AddNode("b", b)
	sum := s.AddNode("sum", add)

	connect(t, s, na, sum, "a")
	if n, _ := s.Node(sum); !n.IsReady() {
		t.Fatal("add not ready with only its first input")
	}
	settle(t, s)
	x, y, z := 0.4, 0.7, 0.2
	if got, want := add.Field3D()(x, y, z), a.Field3D()(x, y, z); got != want {
		t.Errorf("add(a) = %v, want %v", got, want)
	}

	lb := connect(t, s, nb, sum, "b")
	settle(t, s)
	if got, want := add.Field3D()(x, y, z), a.Field3D()(x, y, z)+b.Field3D()(x, y, z); got != want {
		t.Errorf("add(a, b) = %v, want %v", got, want)
	}

	if err := s.Disconnect(lb, true); err != nil {
		t.Fatal(err)
	}
	settle(t, s)
	if got, want := add.Field3D()(x, y, z), a.Field3D()(x, y, z); got != want {
		t.Errorf("add after disconnect = %v, want %v", got, want)
	}
}

func TestSetParamErrors(t *testing.T) {
	tests := []struct {
		kind  string
		param string
		value any
	}{
		{"perlin3d", "frequency", 0.0},
		{"perlin3d", "frequency", "high"},
		{"perlin3d", "seed", 1.5},
		{"billow3d", "octaves", 0},
		{"billow3d", "octaves", 99},
		{"scale", "gain", 1.0},
		{"render", "width", 0},
		{"render", "height", 5000},
		{"render", "depth", 3},
		{"constant2d", "value", true},
	}
	reg := kinds.Builtin()
	for _, tt := range tests {
		t.Run(tt.kind+"."+tt.param, func(t *testing.T) {
			k, err := reg.New(tt.kind, nil)
			if err != nil {
				t.Fatal(err)
			}
			err = k.(graph.Configurable).SetParam(tt.param, tt.value)
			if !errs.Is(err, errs.ErrCodeInvalidParam) {
				t.Errorf("SetParam(%s, %v) = %v, want INVALID_PARAM", tt.param, tt.value, err)
			}
		})
	}
}

func TestRecomputeBeforeSourceFails(t *testing.T) {
	// Drive a kind directly, outside a store, with a source that has not
	// computed yet.
	scale := kinds.NewScale()
	att := graph.Attachment{Source: kinds.NewPerlin3D(), Type: kinds.TypeNoise3D}
	if err := scale.OnSourceAttached(att, true); err != nil {
		t.Fatal(err)
	}
	if err := scale.Recompute(context.Background(), 1); err == nil || errors.Is(err, graph.ErrPending) {
		t.Errorf("Recompute = %v, want a failure", err)
	}
}
