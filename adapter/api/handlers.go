package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	calendarApp "github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	summaryApp "github.com/felixgeelhaar/taskbrief/internal/summary/application"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a single JSON object into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: "request body is empty"}
		}
		return &APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: "malformed JSON: " + err.Error()}
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}
	report := s.deps.Health.Check(r.Context())
	status := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Metrics == nil {
		writeJSON(w, http.StatusOK, map[string]int64{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}

type credentialsRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation,omitempty"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.deps.Auth.SignUp(r.Context(), req.Email, req.Password, req.Confirmation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.deps.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.writeError(w, r, shared.ErrUnauthenticated)
		return
	}
	if err := s.deps.Auth.SignOut(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetRequest struct {
	Email        string `json:"email,omitempty"`
	Token        string `json:"token,omitempty"`
	Password     string `json:"password,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
}

// handleResetRequest always answers 202 for well-formed addresses.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Auth.ResetPassword(r.Context(), req.Token, req.Password, req.Confirmation); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, owner shared.OwnerID) {
	tasks, err := s.deps.ListTasks.Handle(r.Context(), queries.ListTasksQuery{OwnerID: owner})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("order") != "store" {
		queries.SortNewestFirst(tasks)
	}
	if tasks == nil {
		tasks = []queries.TaskDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

type createTaskRequest struct {
	Title          string `json:"title"`
	Category       string `json:"category"`
	Urgency        string `json:"urgency"`
	EstimatedHours *int   `json:"estimated_hours"`
	Deadline       string `json:"deadline"`
	Note           string `json:"note"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, owner shared.OwnerID) {
	var req createTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.CreateTask.Handle(r.Context(), commands.CreateTaskCommand{
		OwnerID: owner,
		Draft: task.Draft{
			Title:    req.Title,
			Category: req.Category,
			Urgency:  req.Urgency,
			Hours:    req.EstimatedHours,
			Deadline: req.Deadline,
			Note:     req.Note,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, queries.ToDTO(created))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, owner shared.OwnerID) {
	taskID, err := uuid.Parse(r.PathValue("taskID"))
	if err != nil {
		s.writeError(w, r, ErrNotFound)
		return
	}
	if err := s.deps.DeleteTask.Handle(r.Context(), commands.DeleteTaskCommand{OwnerID: owner, TaskID: taskID}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, owner shared.OwnerID) {
	summary, err := s.deps.Summarize.Handle(r.Context(), summaryApp.SummarizeQuery{OwnerID: owner})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCalendarExport(w http.ResponseWriter, r *http.Request, owner shared.OwnerID) {
	if s.deps.ExportDeadlines == nil {
		s.writeError(w, r, &APIError{
			Status:  http.StatusNotImplemented,
			Code:    "calendar_not_configured",
			Message: "no CalDAV server is configured",
		})
		return
	}
	result, err := s.deps.ExportDeadlines.Handle(r.Context(), calendarApp.ExportDeadlinesCommand{OwnerID: owner})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
