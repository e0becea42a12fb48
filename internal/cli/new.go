package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

type newOptions struct {
	venue    string
	refresh  bool
	reset    bool
	format   string
	sortBy   string
	showAll  bool
	noUpdate bool
}

func newNewCmd(a *app) *cobra.Command {
	opts := &newOptions{}
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Report shows added since the last check",
		Long: `Compare the catalog with the snapshot saved by the previous check and
print the shows that are new. Exits with code 2 when there are any, so the
command can drive notifications from a cron job or CI workflow.`,
		Example: `  gigmerge new
  gigmerge new --venue paradise --format json
  gigmerge new --refresh --format ics > new.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runNew(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.venue, "venue", "all", "Only report shows at this venue id")
	flags.BoolVar(&opts.refresh, "refresh", false, "Rerun the pipeline before comparing")
	flags.BoolVar(&opts.reset, "reset", false, "Save the snapshot without reporting new shows")
	flags.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or ics")
	flags.StringVar(&opts.sortBy, "sort", string(SortByDate), "Sort order: date, venue or band")
	flags.BoolVar(&opts.showAll, "all", false, "List every show in the catalog, not only new ones")
	flags.BoolVar(&opts.noUpdate, "dry-run", false, "Do not update the snapshot")
	return cmd
}

func (a *app) runNew(cmd *cobra.Command, opts *newOptions) error {
	format, err := parseFormat(opts.format, FormatText, FormatJSON, FormatICS)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(opts.sortBy)
	if err != nil {
		return err
	}

	store, err := a.storage()
	if err != nil {
		return err
	}
	events, err := a.catalog(cmd, store, opts.refresh)
	if err != nil {
		return err
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		return err
	}
	if opts.showAll {
		previous = event.NewSnapshot()
	}
	diff := event.Diff(previous, events, opts.venue)

	var changes []*event.EventChange
	if !opts.noUpdate {
		all, err := store.UpdateSnapshot(events)
		if err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		// New shows are already listed; keep the reschedules and lineup changes.
		for _, c := range all {
			if c.ChangeType != event.ChangeNew {
				changes = append(changes, c)
			}
		}
	}

	if opts.reset {
		if format == FormatText {
			fmt.Fprintln(cmd.OutOrStdout(), "Snapshot refreshed successfully.")
			return nil
		}
		diff = &event.DiffResult{}
		changes = nil
	}

	sortEvents(diff.NewEvents, order)
	result := &OutputResult{
		CheckedAt:  a.now().UTC(),
		Venue:      opts.venue,
		Events:     diff.NewEvents,
		EventCount: len(diff.NewEvents),
		ByVenue:    diff.Venues,
		Changes:    changes,
		ShowAll:    opts.showAll,
	}
	if order != SortByVenue {
		result.ByVenue = nil
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, a.flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(diff.NewEvents) > 0 && !opts.showAll {
		return ErrNewShows
	}
	return nil
}
