package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gigmerge/internal/venue"
)

var errUnknownVenue = errors.New("unknown venue")

func newVenuesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Inspect the venue registry",
	}
	cmd.AddCommand(newVenuesListCmd(a), newVenuesResolveCmd(a))
	return cmd
}

func newVenuesListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the canonical venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFormat(format, FormatText, FormatJSON)
			if err != nil {
				return err
			}

			entries := venue.Default().Entries()

			if f == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLOCATION")
			for _, e := range entries {
				location, _ := venue.FormatLocation(e.ID)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Name, location)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d venues\n", len(entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	return cmd
}

func newVenuesResolveCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "resolve <id> [name]",
		Short: "Show which canonical venue a raw id and name resolve to",
		Example: `  gigmerge venues resolve middle_east "Middle East Downstairs"
  gigmerge venues resolve "" "The Sinclair"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawID, rawName := args[0], ""
			if len(args) > 1 {
				rawName = args[1]
			}

			id, known := venue.Default().ResolveKnown(rawID, rawName)
			if !known && strict {
				return fmt.Errorf("%w: %q %q", errUnknownVenue, rawID, rawName)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, id)
			if entry, ok := venue.Lookup(id); ok && a.flagVerbose {
				location, _ := venue.FormatLocation(id)
				fmt.Fprintf(out, "  Name: %s\n  Location: %s\n", entry.Name, location)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the venue is not in the registry")
	return cmd
}
