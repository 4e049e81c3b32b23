package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/noisegraph/pkg/cache"
	"github.com/matzehuels/noisegraph/pkg/render/dot"
)

// renderTTL is how long rendered diagrams stay in the cache.
const renderTTL = 7 * 24 * time.Hour

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	output   string // output file; stdout when empty
	format   string // dot, svg or png
	detailed bool   // kind names on nodes, pin names on edges
	settle   bool   // settle before drawing, so nothing shows as dirty
	ticks    int
}

// dotCommand creates the dot command for drawing a script's graph.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{format: string(dot.FormatSVG), ticks: defaultMaxTicks}

	cmd := &cobra.Command{
		Use:   "dot <script.toml>",
		Short: "Draw the graph an edit script builds",
		Long: `Apply an edit script and draw the resulting graph as Graphviz DOT, SVG or
PNG. Nodes are laid out in rows by the length of their longest upstream
chain. Dirty nodes are gold and unready nodes dashed grey.

Rendered SVG and PNG output is cached by the DOT source.`,
		Example: `  noisegraph dot examples/terrain.toml -o terrain.svg
  noisegraph dot examples/terrain.toml -f dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := dot.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			return c.runDot(cmd.Context(), cmd.OutOrStdout(), args[0], format, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with kinds and edges with pins")
	cmd.Flags().BoolVar(&opts.settle, "settle", false, "settle the graph before drawing")
	cmd.Flags().IntVar(&opts.ticks, "ticks", opts.ticks, "maximum ticks when settling")

	return cmd
}

func (c *CLI) runDot(ctx context.Context, w io.Writer, path string, format dot.Format, opts dotOpts) error {
	s, env, err := c.loadEnv(path, opts.ticks)
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := env.Run(ctx, s.Steps); err != nil {
		return err
	}
	if opts.settle {
		if _, _, err := env.Settle(ctx); err != nil {
			return err
		}
	}
	src := dot.ToDOT(env.Store.Snapshot(), dot.Options{Detailed: opts.detailed})

	data, cached, err := c.renderDOT(ctx, src, format)
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Drew %s", path)
	printStats(env.Store.NodeCount(), env.Store.LinkCount())
	printFile(opts.output, cached)
	return nil
}

// renderDOT converts src to format through the cache. DOT output is returned
// as is.
func (c *CLI) renderDOT(ctx context.Context, src string, format dot.Format) ([]byte, bool, error) {
	if format == dot.FormatDOT {
		return []byte(src), false, nil
	}

	cc := cache.Instrument(c.newCache(ctx), "render")
	defer cc.Close()

	key := cache.Key("render", string(format), src)
	return cache.GetOrCompute(ctx, cc, key, renderTTL, func() ([]byte, error) {
		spinner := newSpinnerWithContext(ctx, "Rendering "+strings.ToUpper(string(format))+"...")
		spinner.Start()
		defer spinner.Stop()
		return dot.Render(ctx, src, format)
	})
}
