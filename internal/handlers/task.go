package handlers

import (
	"net/http"

	"taskhub/internal/models"
)

const (
	msgTaskNotFound   = "Task not found"
	msgTasksRetrieved = "Tasks retrieved successfully"
	msgFetchTasks     = "Failed to fetch tasks"
)

type createTaskRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description *string           `json:"description"`
	Status      models.TaskStatus `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    models.Priority   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssigneeID  *models.ID        `json:"assigneeId"`
	ProjectID   models.ID         `json:"projectId" validate:"required"`
	DueDate     *string           `json:"dueDate" validate:"omitnil,isodate"`
}

type updateTaskRequest struct {
	Title       *string            `json:"title" validate:"omitnil,min=1"`
	Description models.Nullable[string] `json:"description" validate:"-"`
	Status      *models.TaskStatus      `json:"status" validate:"omitnil,oneof=TODO IN_PROGRESS DONE"`
	Priority    *models.Priority        `json:"priority" validate:"omitnil,oneof=LOW MEDIUM HIGH"`
	AssigneeID  models.NullableID       `json:"assigneeId" validate:"-"`
	ProjectID   *models.ID              `json:"projectId"`
	DueDate     models.Nullable[string] `json:"dueDate" validate:"-"`
}

type taskStatusRequest struct {
	Status models.TaskStatus `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}

type taskListQuery struct {
	Status   models.TaskStatus `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority models.Priority   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// queryID parses an optional numeric query parameter. Absent means zero.
func queryID(r *http.Request, key string) (models.ID, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	id, err := models.ParseID(raw)
	return id, err == nil
}

// ListTasks returns tasks filtered by the status, priority, assigneeId and
// projectId query parameters.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := taskListQuery{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
	}
	if msg, ok := h.check(query); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	filter := models.TaskFilter{Status: query.Status, Priority: query.Priority}
	var ok bool
	if filter.AssigneeID, ok = queryID(r, "assigneeId"); !ok {
		respondError(w, http.StatusBadRequest, `"assigneeId" must be a positive integer`)
		return
	}
	if filter.ProjectID, ok = queryID(r, "projectId"); !ok {
		respondError(w, http.StatusBadRequest, `"projectId" must be a positive integer`)
		return
	}

	tasks, err := h.tasks.FindAll(r.Context(), filter)
	if err != nil {
		h.respondFailure(w, r, err, msgFetchTasks)
		return
	}
	respondSuccess(w, http.StatusOK, tasks, msgTasksRetrieved)
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.tasks.FindByID(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to fetch task")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, task, "Task retrieved successfully")
}

// CreateTask creates a new task. Status and priority default to TODO and MEDIUM.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !h.bind(w, r, &req) {
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		DueDate:     parseOptionalDate(req.DueDate),
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	created, err := h.tasks.Create(r.Context(), task)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to create task")
		return
	}
	respondSuccess(w, http.StatusCreated, created, "Task created successfully")
}

// UpdateTask applies a partial update. An explicit null assigneeId,
// description or dueDate clears that field.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if !h.bind(w, r, &req) {
		return
	}
	due, ok := nullableDate(w, "dueDate", req.DueDate)
	if !ok {
		return
	}

	task, err := h.tasks.Update(r.Context(), id, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		DueDate:     due,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to update task")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, task, "Task updated successfully")
}

// DeleteTask deletes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.tasks.Remove(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to delete task")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Task deleted successfully")
}

func (h *Handlers) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req taskStatusRequest
	if !h.bind(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to update task status")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, task, "Task status updated successfully")
}

func (h *Handlers) ListTasksByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	tasks, err := h.tasks.FindByProject(r.Context(), projectID)
	if err != nil {
		h.respondFailure(w, r, err, msgFetchTasks)
		return
	}
	respondSuccess(w, http.StatusOK, tasks, msgTasksRetrieved)
}

func (h *Handlers) ListTasksByAssignee(w http.ResponseWriter, r *http.Request) {
	assigneeID, ok := pathID(w, r, "assigneeId")
	if !ok {
		return
	}

	tasks, err := h.tasks.FindByAssignee(r.Context(), assigneeID)
	if err != nil {
		h.respondFailure(w, r, err, msgFetchTasks)
		return
	}
	respondSuccess(w, http.StatusOK, tasks, msgTasksRetrieved)
}
