package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/filter"
)

type listOptions struct {
	from      string
	to        string
	dateRange string
	days      int
	venues    []string
	bands     []string
	locations []string
	weekends  bool
	maxPrice  int
	ages      []string
	refresh   bool
	format    string
	sortBy    string
	byVenue   bool
}

func newListCmd(a *app) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shows in the catalog",
		Example: `  gigmerge list --range "Mar 14-15" --weekends
  gigmerge list --range "Mar 14-21" --venue paradise --max-price 30
  gigmerge list --band converge --format ics > converge.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.from, "from", "", "Earliest day (YYYY-MM-DD)")
	flags.StringVar(&opts.to, "to", "", "Latest day (YYYY-MM-DD)")
	flags.StringVar(&opts.dateRange, "range", "", `Date range, e.g. "Mar 14-21", "March", "2026-03-01..2026-03-31"`)
	flags.IntVar(&opts.days, "days", 0, "Only shows within this many days")
	flags.StringSliceVar(&opts.venues, "venue", nil, "Venue id or name (repeatable)")
	flags.StringSliceVar(&opts.bands, "band", nil, "Act name substring (repeatable)")
	flags.StringSliceVar(&opts.locations, "location", nil, "Location substring (repeatable)")
	flags.BoolVar(&opts.weekends, "weekends", false, "Only Saturday and Sunday shows")
	flags.IntVar(&opts.maxPrice, "max-price", 0, "Cheapest ticket at most this many dollars")
	flags.StringSliceVar(&opts.ages, "age", nil, "Age requirement: all-ages, 18+, 21+ (repeatable)")
	flags.BoolVar(&opts.refresh, "refresh", false, "Rerun the pipeline before listing")
	flags.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or ics")
	flags.StringVar(&opts.sortBy, "sort", string(SortByDate), "Sort order: date, venue or band")
	flags.BoolVar(&opts.byVenue, "group", false, "Group text output by venue")
	return cmd
}

func (o *listOptions) filter() (*filter.Filter, error) {
	f := filter.NewFilter()

	if o.dateRange != "" {
		from, to, err := filter.ParseDateRange(o.dateRange)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	if o.from != "" {
		t, err := time.Parse(event.DayLayout, o.from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date %q: %w", o.from, err)
		}
		f.DateFrom = &t
	}
	if o.to != "" {
		t, err := time.Parse(event.DayLayout, o.to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date %q: %w", o.to, err)
		}
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, fmt.Errorf("--to %s is before --from %s", f.DateTo.Format(event.DayLayout), f.DateFrom.Format(event.DayLayout))
	}
	if o.maxPrice < 0 {
		return nil, fmt.Errorf("--max-price must not be negative")
	}

	f.Venues = trimAll(o.venues)
	f.Bands = trimAll(o.bands)
	f.Locations = trimAll(o.locations)
	f.Ages = trimAll(o.ages)
	f.WeekendsOnly = o.weekends
	f.MaxPrice = o.maxPrice
	return f, nil
}

func (a *app) runList(cmd *cobra.Command, opts *listOptions) error {
	format, err := parseFormat(opts.format, FormatText, FormatJSON, FormatICS)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(opts.sortBy)
	if err != nil {
		return err
	}
	f, err := opts.filter()
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

	shows := f.Apply(events)
	if opts.days > 0 {
		now := a.now()
		within := shows[:0:0]
		for _, evt := range shows {
			if evt.IsWithinDays(now, opts.days) {
				within = append(within, evt)
			}
		}
		shows = within
	}
	sortEvents(shows, order)

	result := &OutputResult{
		CheckedAt:  a.now().UTC(),
		Events:     shows,
		EventCount: len(shows),
		ShowAll:    true,
	}
	if !f.IsEmpty() {
		result.Filter = f.String()
	}
	if opts.byVenue {
		result.ByVenue = make(map[string][]*event.Event)
		for _, evt := range shows {
			result.ByVenue[evt.VenueID] = append(result.ByVenue[evt.VenueID], evt)
		}
	}
	return WriteOutput(cmd.OutOrStdout(), result, format, a.flagVerbose)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
