// Package mcp exposes the CLI operations as MCP tools, resources and prompts.
package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	srv.Tool("cli.health").
		Description("Check that the task store and summarizer are wired").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			app := deps.App
			status := map[string]any{
				"status":    "ok",
				"tasks":     app.ListTasksHandler != nil,
				"summarize": app.SummarizeHandler != nil,
				"calendar":  app.ExportDeadlinesHandler != nil,
			}
			if app.Health != nil {
				status["health"] = app.Health.Check(ctx)
			}
			return status, nil
		})

	if err := registerAuthTools(srv, deps); err != nil {
		return err
	}
	if err := registerTaskTools(srv, deps); err != nil {
		return err
	}
	return registerSummaryTools(srv, deps)
}
