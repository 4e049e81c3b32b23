package script

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
)

// StepResult is the outcome of one applied step.
type StepResult struct {
	Index int // 1-based position in the script
	Step  Step
	Link  graph.LinkID    // link created by connect
	Stats graph.TickStats // summed over the passes of a tick step
	Ticks int             // passes run by a tick step
	Err   error           // error returned by the operation, expected or not
}

// OK reports whether the step's outcome matches its expectation.
func (r StepResult) OK() bool {
	if r.Step.Expect == "" {
		return r.Err == nil
	}
	return errs.GetCode(r.Err) == errs.Code(r.Step.Expect)
}

// String describes the step for status output.
func (r StepResult) String() string {
	st := r.Step
	switch st.Op {
	case OpConnect, OpCheck:
		return fmt.Sprintf("%s %s -> %s", st.Op, st.From, st.To)
	case OpDisconnect:
		if st.From != "" {
			return fmt.Sprintf("%s %s -> %s", st.Op, st.From, st.To)
		}
		return fmt.Sprintf("%s %s", st.Op, st.To)
	case OpSet:
		return fmt.Sprintf("%s %s.%s = %v", st.Op, st.Node, st.Param, st.Value)
	case OpTick:
		return fmt.Sprintf("%s x%d", st.Op, r.Ticks)
	default:
		return fmt.Sprintf("%s %s", st.Op, st.Node)
	}
}

// Run applies steps in order and stops at the first step whose outcome does
// not match its expectation. The results of every applied step are returned
// alongside that error.
func (e *Env) Run(ctx context.Context, steps []Step) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := e.Apply(ctx, st)
		res.Index = i + 1
		results = append(results, res)

		e.log.Debug("step", "n", res.Index, "op", st.Op, "desc", res.String(), "err", res.Err)
		if res.OK() {
			continue
		}
		if st.Expect == "" {
			return results, fmt.Errorf("step %d (%s): %w", res.Index, res, res.Err)
		}
		return results, errs.New(errs.ErrCodeInvalidScript, "step %d (%s): expected %s, got %v",
			res.Index, res, st.Expect, res.Err)
	}
	return results, nil
}

// Apply performs one step. The operation's error is carried in the result.
func (e *Env) Apply(ctx context.Context, st Step) StepResult {
	res := StepResult{Step: st}
	switch st.Op {
	case OpConnect, OpCheck:
		res.Link, res.Err = e.connect(st.From, st.To, st.Op == OpConnect)
	case OpDisconnect:
		res.Err = e.disconnect(st.From, st.To)
	case OpRemove:
		res.Err = e.withNode(st.Node, e.Store.RemoveNode)
	case OpDirty:
		res.Err = e.withNode(st.Node, e.Store.MarkDirty)
	case OpSet:
		res.Err = e.withNode(st.Node, func(id graph.NodeID) error {
			return e.Store.SetParam(id, st.Param, st.Value)
		})
	case OpTick:
		res.Stats, res.Ticks, res.Err = e.tick(ctx, st)
	default:
		res.Err = invalid("unknown op %q", st.Op)
	}
	return res
}

func (e *Env) connect(from, to string, commit bool) (graph.LinkID, error) {
	a, err := e.Pin(from)
	if err != nil {
		return graph.LinkID{}, err
	}
	b, err := e.Pin(to)
	if err != nil {
		return graph.LinkID{}, err
	}
	return e.Store.TryConnect(a, b, commit)
}

// disconnect removes the link feeding the input to. If from is set, the
// link must come from that output.
func (e *Env) disconnect(from, to string) error {
	in, err := e.Pin(to)
	if err != nil {
		return err
	}
	links := e.Store.PinLinks(in)
	if len(links) == 0 {
		return errs.New(errs.ErrCodeUnknownLink, "%s has no link", to)
	}
	id := links[0]
	if from != "" {
		out, err := e.Pin(from)
		if err != nil {
			return err
		}
		if l, _ := e.Store.Link(id); l.Source() != out {
			return errs.New(errs.ErrCodeUnknownLink, "no link %s -> %s", from, to)
		}
	}
	return e.Store.Disconnect(id, true)
}

func (e *Env) withNode(name string, fn func(graph.NodeID) error) error {
	id, err := e.NodeID(name)
	if err != nil {
		return err
	}
	return fn(id)
}

func (e *Env) tick(ctx context.Context, st Step) (graph.TickStats, int, error) {
	if st.Settle {
		return e.Settle(ctx)
	}
	count := max(st.Count, 1)
	var total graph.TickStats
	for i := range count {
		stats, err := e.Store.Tick(ctx)
		total = addStats(total, stats)
		if err != nil {
			return total, i + 1, err
		}
	}
	return total, count, nil
}
