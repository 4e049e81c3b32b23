package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/noisegraph/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags select the cache backend for commands that render:
//
//	--cache-dir DIR   file cache location (default ~/.cache/noisegraph)
//	--no-cache        disable caching
//	--redis URL       use Redis instead of files (or NOISEGRAPH_REDIS_URL)
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Noisegraph evaluates procedural noise node graphs",
		Long:         `Noisegraph builds dataflow graphs of noise generators, modifiers and renders from TOML edit scripts, validates every connection, and recomputes only what changed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.cacheDir, "cache-dir", "", "cache directory (default ~/.cache/noisegraph)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable caching")
	pf.StringVar(&c.redisURL, "redis", "", "Redis URL for the cache (default $"+redisEnv+")")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.kindsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// versionCommand prints the build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
