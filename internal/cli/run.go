package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/noisegraph/pkg/kinds"
	"github.com/matzehuels/noisegraph/pkg/script"
)

// settlePoll is the pause between settling passes while a kind has work in
// flight.
const settlePoll = 5 * time.Millisecond

// runFlags holds flags for the run command.
type runFlags struct {
	ticks     int
	noSettle  bool
	showState bool
	images    string
}

// runCommand creates the run command for executing edit scripts.
func (c *CLI) runCommand() *cobra.Command {
	flags := runFlags{ticks: defaultMaxTicks}

	cmd := &cobra.Command{
		Use:   "run <script.toml>",
		Short: "Apply an edit script and settle the graph",
		Long: `Apply an edit script: declare its nodes, apply every step in order, then
tick until no ready node is dirty.

A step with expect = "CODE" must fail with that error code. Any other
outcome stops the run.`,
		Example: `  # Run a script and print the final node states
  noisegraph run examples/terrain.toml --state

  # Write every render node's image to ./out
  noisegraph run examples/terrain.toml --images out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScript(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.ticks, "ticks", flags.ticks, "maximum ticks when settling")
	cmd.Flags().BoolVar(&flags.noSettle, "no-settle", false, "skip the final settle")
	cmd.Flags().BoolVar(&flags.showState, "state", false, "print node states when done")
	cmd.Flags().StringVar(&flags.images, "images", "", "write render node images to this directory")

	return cmd
}

func (c *CLI) runScript(ctx context.Context, path string, flags runFlags) error {
	if flags.ticks < 1 {
		return fmt.Errorf("--ticks must be at least 1")
	}
	prog := newProgress(c.Logger)

	s, env, err := c.loadEnv(path, flags.ticks)
	if err != nil {
		return err
	}
	defer env.Close()

	results, err := env.Run(ctx, s.Steps)
	for _, r := range results {
		printStep(r)
	}
	if err != nil {
		return err
	}

	if !flags.noSettle {
		if err := settle(ctx, env); err != nil {
			return err
		}
	}

	printStats(env.Store.NodeCount(), env.Store.LinkCount())
	if flags.showState {
		fmt.Fprintln(stdout, nodeTable(env.Store.State()))
	}
	if flags.images != "" {
		if err := writeImages(env, flags.images); err != nil {
			return err
		}
	}
	prog.done("Finished", "script", path, "steps", len(results))
	return nil
}

// settle ticks env until it settles, behind a spinner.
func settle(ctx context.Context, env *script.Env) error {
	spinner := newSpinnerWithContext(ctx, "Settling graph...")
	spinner.Start()
	stats, ticks, err := env.Settle(ctx)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Settle failed after %d ticks", ticks))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Settled after %d ticks", ticks))
	printDetail("%s", formatStats(stats))
	return nil
}

// writeImages saves the latest image of every render node as dir/<name>.png.
// Renders without an image are reported and skipped.
func writeImages(env *script.Env, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	ks := env.Kinds()
	for _, name := range slices.Sorted(maps.Keys(ks)) {
		r, ok := ks[name].(*kinds.Render)
		if !ok {
			continue
		}
		if img, _ := r.Image(); img == nil {
			printWarning("%s has no image", name)
			continue
		}
		path := filepath.Join(dir, name+".png")
		if err := writePNG(r, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path, false)
	}
	return nil
}

func writePNG(r *kinds.Render, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
