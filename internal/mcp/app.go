package mcp

import (
	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	"github.com/felixgeelhaar/taskbrief/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided
// container. The session file decides which user the tools act for.
func NewCLIApp(container *app.Container) *cli.App {
	cfg := container.Config
	cliApp := cli.NewApp(
		container.CreateTaskHandler,
		container.DeleteTaskHandler,
		container.ListTasksHandler,
		container.SummarizeHandler,
		container.AuthService,
		cli.NewSessionFile(cfg.SessionFile, cfg.DataDir),
	)
	if container.ExportDeadlinesHandler != nil {
		cliApp.SetExportDeadlinesHandler(container.ExportDeadlinesHandler)
	}
	cliApp.SetObservability(container.Health, container.Metrics)
	cliApp.APIAddr = cfg.APIAddr
	return cliApp
}
