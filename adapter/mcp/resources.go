package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
)

// RegisterResources registers read-only views of the signed-in user's data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("taskbrief://tasks").
		Name("Tasks").
		Description("All tasks of the signed-in user, newest first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListTasksHandler == nil {
				return nil, fmt.Errorf("task listing requires database connection")
			}
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{OwnerID: owner})
			if err != nil {
				return nil, describeErr(err)
			}
			queries.SortNewestFirst(tasks)
			return jsonResource(uri, tasks)
		})

	srv.Resource("taskbrief://health").
		Name("Health").
		Description("Status of the task store, session store and message broker").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Health == nil {
				return jsonResource(uri, map[string]string{"status": "unknown"})
			}
			return jsonResource(uri, app.Health.Check(ctx))
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
