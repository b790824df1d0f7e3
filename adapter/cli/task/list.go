package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
)

var (
	asJSON     bool
	storeOrder bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your tasks, newest first",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return cli.ErrNotInitialized
		}

		ctx := cmd.Context()
		owner, err := app.CurrentOwner(ctx)
		if err != nil {
			return err
		}

		tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{OwnerID: owner})
		if err != nil {
			return err
		}
		if !storeOrder {
			queries.SortNewestFirst(tasks)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tasks)
		}

		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range tasks {
			fmt.Fprintf(out, "%s [%s] %s\n", t.Title, t.CategoryLabel, urgencyBadge(t.Urgency))
			fmt.Fprintf(out, "   ID: %s\n", t.ID)
			fmt.Fprintf(out, "   Deadline: %s  Hours: %s\n", t.Deadline, t.EstimatedHours)
			if t.Note != "" {
				fmt.Fprintf(out, "   Note: %s\n", t.Note)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func urgencyBadge(code string) string {
	switch code {
	case "urgent-important":
		return "(!!)"
	case "not-urgent-important":
		return "(!)"
	default:
		return "(-)"
	}
}

func init() {
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	listCmd.Flags().BoolVar(&storeOrder, "store-order", false, "keep the order returned by the store")
}
