package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"taskhub/internal/logger"
	"taskhub/internal/models"
	"taskhub/internal/response"
	"taskhub/internal/store"
)

const (
	msgRouteNotFound    = "Route not found"
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidJSON      = "Invalid JSON payload"
	msgUnexpected       = "An unexpected error occurred"
)

type ContactService interface {
	FindAll(ctx context.Context) ([]models.Contact, error)
	FindByID(ctx context.Context, id models.ID) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, id models.ID, patch models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, id models.ID) (*models.Contact, error)
}

type TaskService interface {
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	FindByID(ctx context.Context, id models.ID) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id models.ID, patch models.TaskPatch) (*models.Task, error)
	UpdateStatus(ctx context.Context, id models.ID, status models.TaskStatus) (*models.Task, error)
	Remove(ctx context.Context, id models.ID) (bool, error)
	FindByProject(ctx context.Context, projectID models.ID) ([]models.Task, error)
	FindByAssignee(ctx context.Context, assigneeID models.ID) ([]models.Task, error)
}

type ProjectService interface {
	FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	FindByID(ctx context.Context, id models.ID) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	Update(ctx context.Context, id models.ID, patch models.ProjectPatch) (*models.Project, error)
	Remove(ctx context.Context, id models.ID) (bool, error)
	AddMember(ctx context.Context, projectID models.ID, in models.MemberInput) (*models.ProjectMember, error)
	GetMembers(ctx context.Context, projectID models.ID) ([]models.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, contactID models.ID) (bool, error)
	GetProjectStats(ctx context.Context, projectID models.ID) (*models.ProjectStats, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	contacts ContactService
	tasks    TaskService
	projects ProjectService

	log      *logger.Logger
	validate *validator.Validate
	// isDevelopment is consulted on every failure to decide whether error
	// detail is returned to the client.
	isDevelopment func() bool
}

// New creates a new Handlers instance.
func New(contacts ContactService, tasks TaskService, projects ProjectService, log *logger.Logger, isDevelopment func() bool) *Handlers {
	if log == nil {
		log = logger.NewNop()
	}
	if isDevelopment == nil {
		isDevelopment = func() bool { return false }
	}
	return &Handlers{
		contacts:      contacts,
		tasks:         tasks,
		projects:      projects,
		log:           log.With("component", "handlers"),
		validate:      newValidator(),
		isDevelopment: isDevelopment,
	}
}

// Routes returns the versioned API router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.Health)

	r.Route("/contact", func(r chi.Router) {
		r.Get("/list", h.ListContacts)
		r.Post("/", h.CreateContact)
		r.Get("/{id}", h.GetContact)
		r.Put("/{id}", h.UpdateContact)
		r.Delete("/{id}", h.DeleteContact)
	})

	r.Route("/task", func(r chi.Router) {
		r.Get("/list", h.ListTasks)
		r.Post("/create", h.CreateTask)
		r.Get("/project/{projectId}", h.ListTasksByProject)
		r.Get("/assignee/{assigneeId}", h.ListTasksByAssignee)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
		r.Patch("/{id}/status", h.UpdateTaskStatus)
	})

	r.Route("/project", func(r chi.Router) {
		r.Get("/list", h.ListProjects)
		r.Post("/create", h.CreateProject)
		r.Get("/{id}", h.GetProject)
		r.Put("/{id}", h.UpdateProject)
		r.Delete("/{id}", h.DeleteProject)
		r.Post("/{id}/members", h.AddProjectMember)
		r.Get("/{id}/members", h.ListProjectMembers)
		r.Delete("/{id}/members/{contactId}", h.RemoveProjectMember)
		r.Get("/{id}/stats", h.GetProjectStats)
	})

	return r
}

// Health is the liveness check.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ok"))
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, msgRouteNotFound)
}

func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// Recover turns a panic in a downstream handler into a 500 envelope.
func (h *Handlers) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			h.log.Error("panic recovered", "method", r.Method, "path", r.URL.Path, "panic", rvr, "stack", string(debug.Stack()))
			h.respondServerError(w, r, fmt.Errorf("%v", rvr), msgUnexpected)
		}()
		next.ServeHTTP(w, r)
	})
}

// parseID extracts and normalizes an entity ID from URL parameters.
func parseID(r *http.Request, param string) (models.ID, error) {
	return models.ParseID(chi.URLParam(r, param))
}

// parseDate parses a date string in YYYY-MM-DD or RFC 3339 format and
// returns it in UTC.
func parseDate(s string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

// nullableDate parses a clearable date field, writing a 400 on failure.
func nullableDate(w http.ResponseWriter, field string, n models.Nullable[string]) (models.Nullable[time.Time], bool) {
	if n.Value == nil {
		return models.Nullable[time.Time]{Set: n.Set}, true
	}
	t, err := parseDate(*n.Value)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("%q must be a valid date", field))
		return models.Nullable[time.Time]{}, false
	}
	return models.Some(*t), true
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, _ := parseDate(*s)
	return t
}

// decodeJSON reads the request body into dst. An empty body decodes as {}.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, code int, env response.Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(env)
}

func respondSuccess(w http.ResponseWriter, code int, data any, message ...string) {
	writeJSON(w, code, response.Success(data, message...))
}

// respondError sends a failure envelope without data.
func respondError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, response.Failure(message))
}

// respondFailure maps a service error onto the response: conflicts become a
// 400 with their own message, anything else a 500 with message.
func (h *Handlers) respondFailure(w http.ResponseWriter, r *http.Request, err error, message string) {
	var se *store.Error
	if errors.As(err, &se) && se.Kind == store.Conflict {
		msg := se.Message
		if msg == "" {
			msg = message
		}
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	h.respondServerError(w, r, err, message)
}

func (h *Handlers) respondServerError(w http.ResponseWriter, r *http.Request, err error, message string) {
	h.log.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	if h.isDevelopment() {
		writeJSON(w, http.StatusInternalServerError, response.FailureWithData(message, map[string]string{"error": err.Error()}))
		return
	}
	respondError(w, http.StatusInternalServerError, message)
}
