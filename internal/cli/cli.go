// Package cli implements the noisegraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/noisegraph/pkg/cache"
	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/kinds"
	"github.com/matzehuels/noisegraph/pkg/observability"
	"github.com/matzehuels/noisegraph/pkg/script"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "noisegraph"

	// redisEnv names the environment variable read when --redis is unset.
	redisEnv = "NOISEGRAPH_REDIS_URL"

	// defaultMaxTicks bounds settling, so a kind that never finishes cannot
	// hang a command.
	defaultMaxTicks = 2000
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Set by persistent flags on the root command.
	cacheDir string
	noCache  bool
	redisURL string
	kinds    *kinds.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		kinds:  kinds.Builtin(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Environment Factory
// =============================================================================

// loadEnv parses a script and builds its nodes. Graph events are logged at
// debug level in addition to any extra hooks.
func (c *CLI) loadEnv(path string, maxTicks int, extra ...observability.GraphHooks) (*script.Script, *script.Env, error) {
	s, err := script.Load(path)
	if err != nil {
		return nil, nil, err
	}
	hooks := observability.Multi(append([]observability.GraphHooks{observability.NewLogHooks(c.Logger)}, extra...)...)
	env, err := script.Build(s, c.kinds,
		script.WithLogger(c.Logger),
		script.WithStoreOptions(graph.WithHooks(hooks)),
		script.WithSettle(settlePoll, maxTicks),
	)
	if err != nil {
		return nil, nil, err
	}
	return s, env, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache picks the cache backend from the persistent flags: none with
// --no-cache, Redis with --redis or NOISEGRAPH_REDIS_URL, otherwise files
// under the cache directory. A cache that cannot be opened degrades to no
// cache with a warning.
func (c *CLI) newCache(ctx context.Context) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	if url := c.redisAddr(); url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err != nil {
			c.Logger.Warn("redis cache unavailable", "err", err)
			return cache.NewNullCache()
		}
		c.Logger.Debug("using redis cache")
		return rc
	}
	dir, err := c.resolveCacheDir()
	if err != nil {
		c.Logger.Warn("cache dir unavailable", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	c.Logger.Debug("using file cache", "dir", dir)
	return fc
}

func (c *CLI) redisAddr() string {
	if c.redisURL != "" {
		return c.redisURL
	}
	return os.Getenv(redisEnv)
}

// =============================================================================
// Paths
// =============================================================================

// resolveCacheDir returns --cache-dir, or the XDG cache directory
// (~/.cache/noisegraph/).
func (c *CLI) resolveCacheDir() (string, error) {
	if c.cacheDir != "" {
		return c.cacheDir, nil
	}
	return cache.DefaultDir()
}
