package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	calendarApp "github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	"github.com/felixgeelhaar/taskbrief/internal/identity/application/auth"
	identityDomain "github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/security"
	summaryApp "github.com/felixgeelhaar/taskbrief/internal/summary/application"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// ErrNotInitialized is returned by commands run without a container.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	// Task handlers
	CreateTaskHandler *commands.CreateTaskHandler
	DeleteTaskHandler *commands.DeleteTaskHandler
	ListTasksHandler  *queries.ListTasksHandler

	// Summary pipeline
	SummarizeHandler *summaryApp.SummarizeHandler

	// Calendar export, nil when no CalDAV server is configured
	ExportDeadlinesHandler *calendarApp.ExportDeadlinesHandler

	// Credentials
	AuthService *auth.Service
	Session     *SessionFile

	// Observability, used by the serve command
	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics

	// APIAddr is the default listen address of the serve command.
	APIAddr string
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createTaskHandler *commands.CreateTaskHandler,
	deleteTaskHandler *commands.DeleteTaskHandler,
	listTasksHandler *queries.ListTasksHandler,
	summarizeHandler *summaryApp.SummarizeHandler,
	authService *auth.Service,
	session *SessionFile,
) *App {
	return &App{
		CreateTaskHandler: createTaskHandler,
		DeleteTaskHandler: deleteTaskHandler,
		ListTasksHandler:  listTasksHandler,
		SummarizeHandler:  summarizeHandler,
		AuthService:       authService,
		Session:           session,
	}
}

// SetExportDeadlinesHandler enables the calendar commands.
func (a *App) SetExportDeadlinesHandler(h *calendarApp.ExportDeadlinesHandler) {
	a.ExportDeadlinesHandler = h
}

// SetObservability exposes health and metrics to the serve command.
func (a *App) SetObservability(health *observability.HealthRegistry, metrics *observability.InMemoryMetrics) {
	a.Health = health
	a.Metrics = metrics
}

// CurrentOwner resolves the signed-in user from the stored session.
func (a *App) CurrentOwner(ctx context.Context) (shared.OwnerID, error) {
	if a.AuthService == nil || a.Session == nil {
		return shared.OwnerID{}, shared.ErrUnauthenticated
	}
	token, err := a.Session.Load()
	if err != nil {
		if os.IsNotExist(err) {
			return shared.OwnerID{}, shared.ErrUnauthenticated
		}
		return shared.OwnerID{}, err
	}
	owner, ok := a.AuthService.CurrentUserID(ctx, token)
	if !ok {
		return shared.OwnerID{}, shared.ErrUnauthenticated
	}
	return owner, nil
}

// SessionFile keeps the last session token on disk, confined to a
// directory and readable only by the current user.
type SessionFile struct {
	path string
	dir  string
}

// NewSessionFile stores the token at path, which must lie inside dir.
func NewSessionFile(path, dir string) *SessionFile {
	return &SessionFile{path: path, dir: dir}
}

// Save replaces the stored token.
func (f *SessionFile) Save(token string) error {
	return security.WriteFileInDir(f.path, f.dir, []byte(token+"\n"))
}

// Load returns the stored token. A missing file yields an os.IsNotExist error.
func (f *SessionFile) Load() (string, error) {
	data, err := security.ReadFileInDir(f.path, f.dir)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", os.ErrNotExist
	}
	return token, nil
}

// Clear removes the stored token.
func (f *SessionFile) Clear() error {
	return security.RemoveFileInDir(f.path, f.dir)
}

// Describe turns an application error into a message for the terminal.
func Describe(err error) string {
	var validation *shared.ValidationError
	var upstream *shared.UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, shared.ErrUnauthenticated):
		return "not signed in: run `taskbrief auth signin` first"
	case errors.As(err, &validation):
		return fmt.Sprintf("invalid %s: %s", validation.Field, validation.Reason)
	case errors.Is(err, task.ErrTaskNotFound):
		return "task not found"
	case errors.Is(err, identityDomain.ErrInvalidCredentials):
		return "email or password is incorrect"
	case errors.As(err, &upstream):
		return fmt.Sprintf("%s unavailable: %v", upstream.Source, upstream.Err)
	default:
		return err.Error()
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
