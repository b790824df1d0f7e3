package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	cliAuth "github.com/felixgeelhaar/taskbrief/adapter/cli/auth"
	cliCalendar "github.com/felixgeelhaar/taskbrief/adapter/cli/calendar"
	"github.com/felixgeelhaar/taskbrief/adapter/cli/serve"
	"github.com/felixgeelhaar/taskbrief/adapter/cli/summary"
	"github.com/felixgeelhaar/taskbrief/adapter/cli/task"
	"github.com/felixgeelhaar/taskbrief/internal/app"
	mcpinternal "github.com/felixgeelhaar/taskbrief/internal/mcp"
	"github.com/felixgeelhaar/taskbrief/pkg/config"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      observability.LogFormat(cfg.LogFormat),
		Output:      os.Stderr,
		Service:     "taskbrief",
		Environment: cfg.AppEnv,
	})
	cli.SetLogger(logger)

	// Commands that need storage fail with ErrNotInitialized when this does.
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cliApp = mcpinternal.NewCLIApp(container)
	}

	cli.SetApp(cliApp)

	cli.AddCommand(cliAuth.Cmd)
	cli.AddCommand(task.Cmd)
	cli.AddCommand(summary.Cmd)
	cli.AddCommand(cliCalendar.Cmd)
	cli.AddCommand(serve.Cmd)

	cli.Root().SetContext(ctx)
	cli.Execute()
}
