// Package metrics exports graph and cache events as Prometheus metrics.
//
// All metrics are namespaced "noisegraph":
//
//   - nodes, links (gauges): current graph size
//   - connects_total{commit, result}: connect requests by outcome code
//   - disconnects_total{result}
//   - recompute_duration_seconds{kind, status}: status is ok, pending or error
//   - ticks_total, tick_deferred_total
//   - cache_requests_total{key_type, result}: result is hit or miss
//   - cache_written_bytes_total{key_type}
//
// Usage:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	observability.SetGraphHooks(m)
//	observability.SetCacheHooks(m)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/observability"
)

const namespace = "noisegraph"

// Hooks implements both [observability.GraphHooks] and
// [observability.CacheHooks]. It is safe for concurrent use.
type Hooks struct {
	nodes       prometheus.Gauge
	links       prometheus.Gauge
	connects    *prometheus.CounterVec
	disconnects *prometheus.CounterVec
	recompute   *prometheus.HistogramVec
	ticks       prometheus.Counter
	deferred    prometheus.Counter
	cacheReqs   *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
}

// New creates and registers the metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes currently in the graph",
		}),
		links: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links",
			Help:      "Links currently in the graph",
		}),
		connects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connects_total",
			Help:      "Connect requests by commit flag and result code",
		}, []string{"commit", "result"}),
		disconnects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Disconnect requests by result code",
		}, []string{"result"}),
		recompute: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent in node Recompute calls",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"kind", "status"}),
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Recompute passes run",
		}),
		deferred: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_deferred_total",
			Help:      "Nodes skipped because an upstream node was still dirty",
		}),
		cacheReqs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Render cache lookups by result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the render cache",
		}, []string{"key_type"}),
	}
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (h *Hooks) OnNodeAdded(observability.NodeEvent)   { h.nodes.Inc() }
func (h *Hooks) OnNodeRemoved(observability.NodeEvent) { h.nodes.Dec() }

func (h *Hooks) OnConnect(e observability.ConnectEvent) {
	commit := "false"
	if e.Commit {
		commit = "true"
	}
	h.connects.WithLabelValues(commit, result(e.Err)).Inc()
	if e.Commit && e.Err == nil {
		h.links.Inc()
	}
}

func (h *Hooks) OnDisconnect(e observability.DisconnectEvent) {
	h.disconnects.WithLabelValues(result(e.Err)).Inc()
	if e.Commit && e.Err == nil {
		h.links.Dec()
	}
}

func (h *Hooks) OnRecompute(_ context.Context, e observability.RecomputeEvent) {
	status := "ok"
	switch {
	case e.Pending:
		status = "pending"
	case e.Err != nil:
		status = "error"
	}
	h.recompute.WithLabelValues(e.Kind, status).Observe(e.Duration.Seconds())
}

func (h *Hooks) OnTick(_ context.Context, e observability.TickEvent) {
	h.ticks.Inc()
	h.deferred.Add(float64(e.Deferred))
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheReqs.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheReqs.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ observability.GraphHooks = (*Hooks)(nil)
	_ observability.CacheHooks = (*Hooks)(nil)
)
