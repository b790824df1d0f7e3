package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
)

var (
	category string
	urgency  string
	hours    string
	deadline string
	note     string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Long: `Add a task with a category, an urgency, an optional estimate and a deadline.

Categories: work, home, study
Urgency:    urgent-important, not-urgent-important, not-urgent-not-important
Hours:      1 to 24, or "unknown"

Examples:
  taskbrief task add "Quarterly report" -c work -u urgent-important --hours 3 --deadline 2025-04-01
  taskbrief task add "Laundry" -c home -u not-urgent-not-important --deadline 2025-03-29`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return cli.ErrNotInitialized
		}

		ctx := cmd.Context()
		owner, err := app.CurrentOwner(ctx)
		if err != nil {
			return err
		}

		estimate, err := task.HoursFromText(hours)
		if err != nil {
			return err
		}

		created, err := app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
			OwnerID: owner,
			Draft: task.Draft{
				Title:    args[0],
				Category: category,
				Urgency:  urgency,
				Hours:    estimate,
				Deadline: deadline,
				Note:     note,
			},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task added: %s\n", created.ID())
		fmt.Fprintf(out, "  title: %s\n", created.Title())
		fmt.Fprintf(out, "  deadline: %s\n", created.Deadline())
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&category, "category", "c", "", "work, home or study")
	addCmd.Flags().StringVarP(&urgency, "urgency", "u", "", "urgent-important, not-urgent-important or not-urgent-not-important")
	addCmd.Flags().StringVar(&hours, "hours", "", "estimated hours (1-24) or unknown")
	addCmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline (YYYY-MM-DD)")
	addCmd.Flags().StringVarP(&note, "note", "n", "", "free-form note")
}
