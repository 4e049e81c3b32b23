package script

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/kinds"
)

// Env is a live store built from a script's node declarations, plus the
// name tables needed to apply the script's steps.
//
// Pin references are resolved to ids once, when the node is created. A
// reference to a removed node's pin therefore yields that pin's stale id,
// and the store reports it exactly as it would for an editor holding the
// same handle.
type Env struct {
	Store *graph.Store

	order []string
	nodes map[string]graph.NodeID
	pins  map[string]graph.PinID

	log       *log.Logger
	storeOpts []graph.Option
	poll      time.Duration
	maxTicks  int
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger steps are reported to at debug level.
func WithLogger(l *log.Logger) Option {
	return func(e *Env) {
		if l != nil {
			e.log = l
		}
	}
}

// WithStoreOptions passes options through to [graph.New].
func WithStoreOptions(opts ...graph.Option) Option {
	return func(e *Env) { e.storeOpts = append(e.storeOpts, opts...) }
}

// WithSettle bounds settling ticks: at most limit passes, sleeping poll
// between passes while work is pending.
func WithSettle(poll time.Duration, limit int) Option {
	return func(e *Env) {
		e.poll, e.maxTicks = poll, limit
	}
}

// Build creates a store holding the script's nodes. Kinds are looked up in
// reg.
func Build(s *Script, reg *kinds.Registry, opts ...Option) (*Env, error) {
	e := &Env{
		nodes:    make(map[string]graph.NodeID, len(s.Nodes)),
		pins:     make(map[string]graph.PinID),
		log:      log.New(io.Discard),
		poll:     5 * time.Millisecond,
		maxTicks: 2000,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Store = graph.New(e.storeOpts...)

	for _, decl := range s.Nodes {
		k, err := reg.New(decl.Kind, decl.Params)
		if err != nil {
			e.Close()
			return nil, errs.Wrap(errs.GetCode(err), err, "node %q", decl.Name)
		}
		id := e.Store.AddNode(decl.Name, k)
		e.order = append(e.order, decl.Name)
		e.nodes[decl.Name] = id

		n, _ := e.Store.Node(id)
		for _, pid := range append(n.Inputs(), n.Outputs()...) {
			p, _ := e.Store.Pin(pid)
			e.pins[decl.Name+"."+p.Name()] = pid
		}
	}
	return e, nil
}

// Names returns the declared node names in declaration order, including
// nodes removed since.
func (e *Env) Names() []string { return append([]string(nil), e.order...) }

// NodeID returns the id a declared node was created with.
func (e *Env) NodeID(name string) (graph.NodeID, error) {
	id, ok := e.nodes[name]
	if !ok {
		return graph.NodeID{}, invalid("undeclared node %q", name)
	}
	return id, nil
}

// Pin resolves a "node.pin" reference.
func (e *Env) Pin(ref string) (graph.PinID, error) {
	node, _, ok := strings.Cut(ref, ".")
	if !ok {
		return graph.PinID{}, invalid("pin reference %q is not node.pin", ref)
	}
	if _, ok := e.nodes[node]; !ok {
		return graph.PinID{}, invalid("undeclared node %q in %q", node, ref)
	}
	id, ok := e.pins[ref]
	if !ok {
		return graph.PinID{}, invalid("node %q has no pin %q", node, ref[len(node)+1:])
	}
	return id, nil
}

// Kinds returns the kind of every live node, keyed by name.
func (e *Env) Kinds() map[string]graph.Kind {
	out := make(map[string]graph.Kind, len(e.nodes))
	for name, id := range e.nodes {
		if n, ok := e.Store.Node(id); ok {
			out[name] = n.Kind()
		}
	}
	return out
}

// Close releases kinds holding background work, such as renders in flight.
func (e *Env) Close() error {
	if e.Store == nil {
		return nil
	}
	var errList []error
	for _, n := range e.Store.Nodes() {
		if c, ok := n.Kind().(io.Closer); ok {
			errList = append(errList, c.Close())
		}
	}
	return errors.Join(errList...)
}

// Settle ticks until no ready node is dirty. It returns the summed stats and
// the number of passes run. A recompute failure stops settling early.
func (e *Env) Settle(ctx context.Context) (graph.TickStats, int, error) {
	var total graph.TickStats
	for i := 1; i <= e.maxTicks; i++ {
		stats, err := e.Store.Tick(ctx)
		total = addStats(total, stats)
		if err != nil {
			return total, i, err
		}
		if stats.Failed > 0 {
			return total, i, errs.New(errs.ErrCodeInternal, "%d node(s) failed to recompute", stats.Failed)
		}
		if stats.Settled() {
			return total, i, nil
		}
		if stats.Pending > 0 {
			select {
			case <-ctx.Done():
				return total, i, ctx.Err()
			case <-time.After(e.poll):
			}
		}
	}
	return total, e.maxTicks, errs.New(errs.ErrCodeInternal, "graph did not settle after %d ticks", e.maxTicks)
}

func addStats(a, b graph.TickStats) graph.TickStats {
	return graph.TickStats{
		Visited:    a.Visited + b.Visited,
		Recomputed: a.Recomputed + b.Recomputed,
		Pending:    a.Pending + b.Pending,
		Failed:     a.Failed + b.Failed,
		Deferred:   a.Deferred + b.Deferred,
	}
}
