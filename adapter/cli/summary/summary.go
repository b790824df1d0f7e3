// Package summary holds the summary command.
package summary

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	summaryApp "github.com/felixgeelhaar/taskbrief/internal/summary/application"
)

var (
	asJSON     bool
	showPrompt bool
)

// Cmd asks the summarizer for today's plan.
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize your tasks into today's work plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SummarizeHandler == nil {
			return cli.ErrNotInitialized
		}

		ctx := cmd.Context()
		owner, err := app.CurrentOwner(ctx)
		if err != nil {
			return err
		}

		result, err := app.SummarizeHandler.Handle(ctx, summaryApp.SummarizeQuery{OwnerID: owner})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		if showPrompt {
			fmt.Fprintln(out, result.Prompt)
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, result.Text)
		return nil
	},
}

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	Cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "print the prompt sent to the summarizer")
}
