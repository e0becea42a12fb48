package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gigmerge/internal/config"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/storage"
	"github.com/pfrederiksen/gigmerge/internal/venue"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNewShows = 2
)

// ErrNewShows is returned by `gigmerge new` when it reports new shows, so
// Execute can exit with ExitNewShows.
var ErrNewShows = errors.New("new shows found")

// app carries what every subcommand needs once the config is loaded.
type app struct {
	out io.Writer
	now func() time.Time

	flagConfig    string
	flagDataDir   string
	flagLogLevel  string
	flagLogFormat string
	flagVerbose   bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{out: os.Stdout, now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gigmerge",
		Short: "Merge concert listings into one deduplicated Boston catalog",
		Long: `gigmerge reads the raw listings written by the scrapers, normalizes
acts, venues, times, ages and prices, links records that describe the same
show and merges each group into one canonical record.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flagConfig, "config", "", "Config file (default: gigmerge.yaml, then ~/.config/gigmerge/config.yaml)")
	flags.StringVar(&a.flagDataDir, "data-dir", "", "Data directory (overrides config)")
	flags.StringVar(&a.flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.flagLogFormat, "log-format", "", "Log format: json or console")
	flags.BoolVar(&a.flagVerbose, "verbose", false, "Enable verbose output and debug logging")

	cmd.AddCommand(
		newProcessCmd(a),
		newNewCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newVenuesCmd(a),
	)
	return cmd
}

// setup loads the config, applies flag overrides and installs the logger
// and venue registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return err
	}

	if a.flagDataDir != "" {
		cfg.DataDir = a.flagDataDir
	}
	if a.flagLogLevel != "" {
		cfg.Logging.Level = a.flagLogLevel
	}
	if a.flagLogFormat != "" {
		cfg.Logging.Format = a.flagLogFormat
	}
	if a.flagVerbose {
		cfg.Logging.Level = string(logger.LevelDebug)
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = cmd.ErrOrStderr()
	log, err := logger.NewWithConfig(logCfg)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	logger.SetDefault(log)

	if err := venue.Reload(cfg.RegistryPath, venue.WithDefaultState(cfg.Venues.DefaultState)); err != nil {
		return fmt.Errorf("loading venue registry: %w", err)
	}

	a.cfg = cfg
	logger.Debug("Configuration loaded", logger.Fields{
		"data_dir": cfg.DataDir,
		"raw_file": cfg.RawPath(),
		"registry": cfg.RegistryPath,
		"workers":  cfg.Workers,
		"venues":   venue.Default().Len(),
	})
	return nil
}

func (a *app) storage() (*storage.Storage, error) {
	store, err := storage.New(a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func parseFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	names := make([]string, len(allowed))
	for i, f := range allowed {
		if f == format {
			return format, nil
		}
		names[i] = "'" + string(f) + "'"
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", s, strings.Join(names, ", "))
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, ErrNewShows):
		os.Exit(ExitNewShows)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
