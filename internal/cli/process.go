package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/metrics"
	"github.com/pfrederiksen/gigmerge/internal/pipeline"
	"github.com/pfrederiksen/gigmerge/internal/storage"
)

type processOptions struct {
	input  string
	format string
}

func newProcessCmd(a *app) *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Normalize, deduplicate and merge the raw listings into the catalog",
		Example: `  gigmerge process
  gigmerge process --input scraped.json --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(opts.format, FormatText, FormatJSON)
			if err != nil {
				return err
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			result, err := a.process(cmd, store, opts.input)
			if err != nil {
				return err
			}
			return writeStats(cmd.OutOrStdout(), result.Stats, format, store.Path(storage.ProcessedFile))
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Raw listings file (overrides config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	return cmd
}

// process runs the pipeline over the raw file and saves the catalog.
func (a *app) process(cmd *cobra.Command, store *storage.Storage, input string) (*pipeline.Result, error) {
	if input == "" {
		input = a.cfg.RawFile
	} else if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	records, skipped, err := store.LoadRaw(input)
	if err != nil {
		return nil, err
	}

	rec := metrics.New()
	opts := pipeline.DefaultOptions()
	opts.Detect = a.cfg.Detect
	opts.Merge = a.cfg.Merge
	opts.Workers = a.cfg.Workers
	opts.DropPast = a.cfg.DropPastEvents
	opts.Now = a.now
	opts.Metrics = rec

	result, err := pipeline.New(opts).Run(cmd.Context(), records)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", store.Path(input), err)
	}
	result.Stats.Undecodable = skipped
	rec.RecordUndecodable(skipped)

	if err := store.SaveProcessed(result.Events); err != nil {
		return nil, err
	}

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			// The catalog is already written; a stale metrics file is not fatal.
			logger.Warn("Failed to write metrics", logger.Fields{"path": path, "error": err.Error()})
		}
	}
	return result, nil
}

// catalog returns the processed catalog, running the pipeline first when
// refresh is set or nothing has been processed yet.
func (a *app) catalog(cmd *cobra.Command, store *storage.Storage, refresh bool) ([]*event.Event, error) {
	if !refresh {
		events, err := store.LoadProcessed()
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, storage.ErrNoCatalog) {
			return nil, err
		}
		logger.Info("No processed catalog, running pipeline", logger.Fields{"data_dir": store.Dir()})
	}

	result, err := a.process(cmd, store, "")
	if err != nil {
		return nil, err
	}
	return result.Events, nil
}
