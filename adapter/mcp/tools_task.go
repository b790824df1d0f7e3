package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
)

type taskCreateInput struct {
	Title          string `json:"title" jsonschema:"required"`
	Category       string `json:"category" jsonschema:"required"`
	Urgency        string `json:"urgency" jsonschema:"required"`
	EstimatedHours string `json:"estimated_hours,omitempty"`
	Deadline       string `json:"deadline" jsonschema:"required"`
	Note           string `json:"note,omitempty"`
}

type taskListInput struct {
	StoreOrder bool `json:"store_order,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("task.create").
		Description("Create a task. category: work|home|study; urgency: urgent-important|not-urgent-important|not-urgent-not-important; deadline: YYYY-MM-DD").
		Handler(func(ctx context.Context, input taskCreateInput) (*queries.TaskDTO, error) {
			if app.CreateTaskHandler == nil {
				return nil, errors.New("task creation requires database connection")
			}
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			hours, err := task.HoursFromText(input.EstimatedHours)
			if err != nil {
				return nil, describeErr(err)
			}

			created, err := app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
				OwnerID: owner,
				Draft: task.Draft{
					Title:    input.Title,
					Category: input.Category,
					Urgency:  input.Urgency,
					Hours:    hours,
					Deadline: input.Deadline,
					Note:     input.Note,
				},
			})
			if err != nil {
				return nil, describeErr(err)
			}
			dto := queries.ToDTO(created)
			return &dto, nil
		})

	srv.Tool("task.list").
		Description("List your tasks, newest first").
		Handler(func(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
			if app.ListTasksHandler == nil {
				return nil, errors.New("task listing requires database connection")
			}
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{OwnerID: owner})
			if err != nil {
				return nil, describeErr(err)
			}
			if !input.StoreOrder {
				queries.SortNewestFirst(tasks)
			}
			return tasks, nil
		})

	srv.Tool("task.delete").
		Description("Delete one of your tasks").
		Handler(func(ctx context.Context, input taskIDInput) (map[string]any, error) {
			if app.DeleteTaskHandler == nil {
				return nil, errors.New("task deletion requires database connection")
			}
			taskID, err := parseUUID(input.TaskID)
			if err != nil {
				return nil, err
			}
			owner, err := app.CurrentOwner(ctx)
			if err != nil {
				return nil, describeErr(err)
			}
			if err := app.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{OwnerID: owner, TaskID: taskID}); err != nil {
				return nil, describeErr(err)
			}
			return map[string]any{"task_id": taskID, "deleted": true}, nil
		})

	return nil
}
