package observability

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogHooks writes graph events to a charmbracelet logger.
// Routine events log at debug level; rejected connects and failed
// recomputes log at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to l. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnNodeAdded(e NodeEvent) {
	h.logger.Debug("node added", "id", e.ID, "name", e.Name, "kind", e.Kind)
}

func (h *LogHooks) OnNodeRemoved(e NodeEvent) {
	h.logger.Debug("node removed", "id", e.ID, "name", e.Name, "kind", e.Kind)
}

func (h *LogHooks) OnConnect(e ConnectEvent) {
	switch {
	case e.Err != nil && e.Commit:
		h.logger.Warn("connect rejected", "from", e.From, "to", e.To, "err", e.Err)
	case e.Err != nil:
		h.logger.Debug("connect preview rejected", "from", e.From, "to", e.To, "err", e.Err)
	case e.Commit:
		h.logger.Debug("linked", "link", e.Link, "from", e.From, "to", e.To)
	default:
		h.logger.Debug("connect preview ok", "from", e.From, "to", e.To)
	}
}

func (h *LogHooks) OnDisconnect(e DisconnectEvent) {
	if e.Err != nil {
		h.logger.Warn("disconnect rejected", "link", e.Link, "err", e.Err)
		return
	}
	h.logger.Debug("unlinked", "link", e.Link, "commit", e.Commit)
}

func (h *LogHooks) OnRecompute(_ context.Context, e RecomputeEvent) {
	if e.Err != nil {
		h.logger.Warn("recompute failed", "node", e.Name, "kind", e.Kind, "err", e.Err)
		return
	}
	h.logger.Debug("recomputed", "node", e.Name, "kind", e.Kind, "pending", e.Pending, "took", e.Duration)
}

func (h *LogHooks) OnTick(_ context.Context, e TickEvent) {
	if e.Visited == 0 {
		return
	}
	h.logger.Debug("tick",
		"recomputed", e.Recomputed,
		"pending", e.Pending,
		"failed", e.Failed,
		"deferred", e.Deferred,
		"took", e.Duration,
	)
}

var _ GraphHooks = (*LogHooks)(nil)
