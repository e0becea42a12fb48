package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/gigmerge/internal/calendar"
)

func newShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one show from the catalog",
		Long: `Print one show by id. The processed catalog is searched first, then the
snapshot saved by the last check, so shows that have dropped out of the
catalog can still be looked up.`,
		Example: `  gigmerge show 3f9a1c0b7d2e
  gigmerge show 3f9a1c0b7d2e --format ics > show.ics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format, FormatText, FormatJSON, FormatICS)
			if err != nil {
				return err
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			evt, err := store.GetEventByID(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch f {
			case FormatJSON:
				return writeJSON(out, evt)
			case FormatICS:
				_, err := io.WriteString(out, calendar.GenerateICS(evt))
				return err
			}
			fmt.Fprintf(out, "%s %s @ %s: %s\n", evt.DateDisplay(), evt.Time, evt.VenueName, actLine(evt))
			writeDetails(out, "  ", evt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or ics")
	return cmd
}
