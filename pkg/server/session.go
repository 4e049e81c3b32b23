package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/script"
)

// Session is one live graph shared by every request to a server. All access
// to the underlying store goes through the session lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu  sync.Mutex
	env *script.Env
}

// NewSession wraps env in a session with a fresh random id.
func NewSession(env *script.Env) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		env:       env,
	}
}

// Do runs fn with exclusive access to the session's environment.
func (s *Session) Do(fn func(*script.Env) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.env)
}

// Close releases the environment's background work.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Close()
}

// tick runs one pass, or settles when settle is set. It holds the lock for
// the whole call, so a settle blocks other requests until the graph is clean.
func (s *Session) tick(ctx context.Context, settle bool) (graph.TickStats, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settle {
		return s.env.Settle(ctx)
	}
	stats, err := s.env.Store.Tick(ctx)
	return stats, 1, err
}

// resolveNode accepts a declared name or a NodeID string.
func resolveNode(env *script.Env, ref string) (graph.NodeID, error) {
	if id, err := env.NodeID(ref); err == nil {
		return id, nil
	}
	id, err := graph.ParseNodeID(ref)
	if err != nil {
		return graph.NodeID{}, errs.New(errs.ErrCodeUnknownID, "no node %q", ref)
	}
	return id, nil
}

// resolvePin accepts "node.pin" or a PinID string. A name reference wins
// when both parse.
func resolvePin(env *script.Env, ref string) (graph.PinID, error) {
	if name, _, ok := strings.Cut(ref, "."); ok {
		if _, err := env.NodeID(name); err == nil {
			return env.Pin(ref)
		}
	}
	id, err := graph.ParsePinID(ref)
	if err != nil {
		return graph.PinID{}, errs.New(errs.ErrCodeInvalidInput, "pin reference %q is neither node.pin nor a pin id", ref)
	}
	return id, nil
}
