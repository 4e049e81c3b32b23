package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/matzehuels/noisegraph/pkg/observability"
	"github.com/matzehuels/noisegraph/pkg/observability/metrics"
	"github.com/matzehuels/noisegraph/pkg/observability/tracing"
	"github.com/matzehuels/noisegraph/pkg/server"
)

const tracerName = "github.com/matzehuels/noisegraph"

// serveOpts holds flags for the serve command.
type serveOpts struct {
	addr    string
	noSteps bool
	ticks   int
}

// serveCommand serves a script's graph over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "localhost:8080", ticks: defaultMaxTicks}

	cmd := &cobra.Command{
		Use:   "serve <script.toml>",
		Short: "Serve a live graph over HTTP",
		Long: `Build the graph an edit script declares, apply its steps, and serve it over
HTTP so an editor can query pins, preview and commit links, and tick.

Prometheus metrics are served at /metrics. Spans go to the global
OpenTelemetry tracer provider.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.noSteps, "no-steps", false, "serve the declared nodes without applying steps")
	cmd.Flags().IntVar(&opts.ticks, "ticks", opts.ticks, "maximum ticks per settle request")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, opts serveOpts) error {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	observability.SetCacheHooks(m)
	defer observability.Reset()

	tr := tracing.New(otel.Tracer(tracerName))
	s, env, err := c.loadEnv(path, opts.ticks, m, tr)
	if err != nil {
		return err
	}
	if !opts.noSteps {
		results, err := env.Run(ctx, s.Steps)
		for _, r := range results {
			printStep(r)
		}
		if err != nil {
			env.Close()
			return err
		}
	}

	sess := server.NewSession(env)
	defer sess.Close()

	cc := c.newCache(ctx)
	defer cc.Close()

	srv := server.New(sess,
		server.WithCache(cc),
		server.WithLogger(c.Logger),
		server.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)
	printSuccess("Serving %s", path)
	printKeyValue("session", sess.ID)
	printKeyValue("address", "http://"+opts.addr)
	printNextStep("Draw the graph", "curl http://"+opts.addr+"/graph.svg")
	return srv.ListenAndServe(ctx, opts.addr)
}
