package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Short:   "Delete one of your tasks",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return cli.ErrNotInitialized
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		ctx := cmd.Context()
		owner, err := app.CurrentOwner(ctx)
		if err != nil {
			return err
		}

		if err := app.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{OwnerID: owner, TaskID: taskID}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task deleted: %s\n", taskID)
		return nil
	},
}
