// Package serve runs the HTTP API in the foreground.
package serve

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/adapter/api"
	"github.com/felixgeelhaar/taskbrief/adapter/cli"
)

var addr string

// Cmd starts the HTTP API and stops it on SIGINT or SIGTERM.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AuthService == nil {
			return cli.ErrNotInitialized
		}

		cfg := api.DefaultServerConfig()
		switch {
		case addr != "":
			cfg.Addr = addr
		case app.APIAddr != "":
			cfg.Addr = app.APIAddr
		}

		server := api.NewServer(cfg, api.Dependencies{
			Auth:            app.AuthService,
			CreateTask:      app.CreateTaskHandler,
			DeleteTask:      app.DeleteTaskHandler,
			ListTasks:       app.ListTasksHandler,
			Summarize:       app.SummarizeHandler,
			ExportDeadlines: app.ExportDeadlinesHandler,
			Health:          app.Health,
			Metrics:         app.Metrics,
		}, cli.Logger())

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.Addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return <-errCh
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "listen address (default API_ADDR)")
}
