package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common taskbrief workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_plan").
		Description("Review today's tasks, tidy the list and produce a work plan.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Daily Plan",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me plan today.

1. Read my tasks from the taskbrief://tasks resource.
2. Point out tasks whose deadline has passed and ask whether to delete them with task.delete.
3. Call summary.generate and present the plan it returns.
4. If any urgent task is missing, offer to add it with task.create.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("capture_task").
		Description("Turn a free-form sentence into a task.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			text := args["text"]
			return &mcp.PromptResult{
				Description: "Capture Task",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Create a task from this note using task.create:

%q

Pick the category (work, home or study) and the urgency
(urgent-important, not-urgent-important or not-urgent-not-important)
that fit best. Ask me for the deadline if the note does not give one.`, text),
						},
					},
				},
			}, nil
		})

	return nil
}
