// Package tracing exports graph events as OpenTelemetry spans.
//
// Recompute and tick events become spans whose start time is back-dated by
// the event's duration, so a trace shows how long each pass and each node
// took. Recompute spans are children of whatever span the Tick caller's
// context carries. Connect and disconnect requests become zero-length spans
// marked as errors when rejected.
//
// Usage:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	observability.SetGraphHooks(tracing.New(otel.Tracer("noisegraph")))
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/observability"
)

// Hooks implements [observability.GraphHooks] with spans.
type Hooks struct {
	observability.NoopGraphHooks
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

// New returns hooks that record spans with tracer. attrs are added to every
// span, e.g. a session id.
func New(tracer trace.Tracer, attrs ...attribute.KeyValue) *Hooks {
	return &Hooks{tracer: tracer, attrs: attrs}
}

func (h *Hooks) OnConnect(e observability.ConnectEvent) {
	_, span := h.tracer.Start(context.Background(), "noisegraph.connect",
		trace.WithAttributes(h.attrs...),
		trace.WithAttributes(
			attribute.String("noisegraph.from", e.From),
			attribute.String("noisegraph.to", e.To),
			attribute.Bool("noisegraph.commit", e.Commit),
		))
	if e.Link != "" {
		span.SetAttributes(attribute.String("noisegraph.link", e.Link))
	}
	setStatus(span, e.Err)
	span.End()
}

func (h *Hooks) OnDisconnect(e observability.DisconnectEvent) {
	_, span := h.tracer.Start(context.Background(), "noisegraph.disconnect",
		trace.WithAttributes(h.attrs...),
		trace.WithAttributes(
			attribute.String("noisegraph.link", e.Link),
			attribute.Bool("noisegraph.commit", e.Commit),
		))
	setStatus(span, e.Err)
	span.End()
}

func (h *Hooks) OnRecompute(ctx context.Context, e observability.RecomputeEvent) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, "noisegraph.recompute",
		trace.WithTimestamp(end.Add(-e.Duration)),
		trace.WithAttributes(h.attrs...),
		trace.WithAttributes(
			attribute.String("noisegraph.node", e.Node),
			attribute.String("noisegraph.name", e.Name),
			attribute.String("noisegraph.kind", e.Kind),
			attribute.Bool("noisegraph.pending", e.Pending),
		))
	setStatus(span, e.Err)
	span.End(trace.WithTimestamp(end))
}

func (h *Hooks) OnTick(ctx context.Context, e observability.TickEvent) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, "noisegraph.tick",
		trace.WithTimestamp(end.Add(-e.Duration)),
		trace.WithAttributes(h.attrs...),
		trace.WithAttributes(
			attribute.Int("noisegraph.visited", e.Visited),
			attribute.Int("noisegraph.recomputed", e.Recomputed),
			attribute.Int("noisegraph.pending", e.Pending),
			attribute.Int("noisegraph.failed", e.Failed),
			attribute.Int("noisegraph.deferred", e.Deferred),
		))
	if e.Failed > 0 {
		span.SetStatus(codes.Error, "recompute failures")
	}
	span.End(trace.WithTimestamp(end))
}

func setStatus(span trace.Span, err error) {
	if err == nil {
		return
	}
	if code := errs.GetCode(err); code != "" {
		span.SetAttributes(attribute.String("noisegraph.error_code", string(code)))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, errs.UserMessage(err))
}

var _ observability.GraphHooks = (*Hooks)(nil)
