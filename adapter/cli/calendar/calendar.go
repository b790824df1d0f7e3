// Package calendar holds the calendar export command.
package calendar

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	calendarApp "github.com/felixgeelhaar/taskbrief/internal/calendar/application"
)

// Cmd is the calendar command group
var Cmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export task deadlines to a CalDAV calendar",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write one all-day event per task on its deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}
		if app.ExportDeadlinesHandler == nil {
			return errors.New("calendar export is not configured: set CALDAV_URL")
		}

		ctx := cmd.Context()
		owner, err := app.CurrentOwner(ctx)
		if err != nil {
			return err
		}

		result, err := app.ExportDeadlinesHandler.Handle(ctx, calendarApp.ExportDeadlinesCommand{OwnerID: owner})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Exported %d deadline(s): %d created, %d updated\n", result.Written(), result.Created, result.Updated)
		if result.Failed > 0 {
			fmt.Fprintf(out, "  failed: %d\n", result.Failed)
		}
		if result.Deleted > 0 {
			fmt.Fprintf(out, "  removed: %d\n", result.Deleted)
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(exportCmd)
}
