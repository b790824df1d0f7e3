package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	calendarApp "github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	summaryApp "github.com/felixgeelhaar/taskbrief/internal/summary/application"
	summaryDomain "github.com/felixgeelhaar/taskbrief/internal/summary/domain"
)

func registerSummaryTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("summary.generate").
		Description("Summarize your tasks into today's work plan with suggestions").
		Handler(func(ctx context.Context, input struct{}) (*summaryDomain.Summary, error) {
			if app.SummarizeHandler == nil {
				return nil, errors.New("summary requires database connection")
			}
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			summary, err := app.SummarizeHandler.Handle(ctx, summaryApp.SummarizeQuery{OwnerID: owner})
			if err != nil {
				return nil, describeErr(err)
			}
			return summary, nil
		})

	srv.Tool("calendar.export").
		Description("Write one all-day CalDAV event per task on its deadline").
		Handler(func(ctx context.Context, input struct{}) (*calendarApp.ExportResult, error) {
			if app.ExportDeadlinesHandler == nil {
				return nil, errors.New("calendar export is not configured: set CALDAV_URL")
			}
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			result, err := app.ExportDeadlinesHandler.Handle(ctx, calendarApp.ExportDeadlinesCommand{OwnerID: owner})
			if err != nil {
				return nil, describeErr(err)
			}
			return result, nil
		})

	return nil
}
