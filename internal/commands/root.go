package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/buildinfo"
	"github.com/cleared-dev/recon/internal/cache"
	"github.com/cleared-dev/recon/internal/config"
	"github.com/cleared-dev/recon/internal/logging"
	"github.com/cleared-dev/recon/internal/metrics"
	"github.com/cleared-dev/recon/internal/tenant"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	ws  *tenant.Workspace
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "recon",
		Short:   "Per-tenant ledger reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "recon.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newChartCommand(a))
	rootCmd.AddCommand(newCacheCommand(a))
	rootCmd.AddCommand(newRunCommand(a))

	return rootCmd
}

// load reads the config, resolves data_dir against the config file's
// directory and sets the log level.
func (a *app) load() error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(filepath.Dir(a.configPath), cfg.DataDir)
	}

	levelName := cfg.Log.Level
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	logging.Init(os.Stderr, level)
	logging.SetLevel(level)

	a.cfg = cfg
	a.ws = tenant.New(cfg.DataDir)
	return nil
}

// openCache returns the configured classification cache and a func that
// releases it.
func (a *app) openCache(ctx context.Context) (cache.Cache, func(), error) {
	switch a.cfg.Cache.Backend {
	case cache.BackendPostgres:
		pg, err := cache.OpenPostgres(ctx, a.cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres cache: %w", err)
		}
		return pg, pg.Close, nil
	case cache.BackendMemory:
		return cache.NewMemory(), func() {}, nil
	default:
		return cache.NewFile(a.ws.ClassificationPath), func() {}, nil
	}
}

// resolver opens the cache and wraps it in a Resolver over the workspace charts.
func (a *app) resolver(ctx context.Context, m *metrics.Metrics) (*cache.Resolver, func(), error) {
	c, closeFn, err := a.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewResolver(c, a.ws, cache.WithMetrics(m)), closeFn, nil
}
