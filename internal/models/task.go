package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every accepted task status.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities lists every accepted priority, most urgent first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank returns a sort weight for the priority. Higher is more urgent;
// unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task is a unit of work inside a project, optionally assigned to a contact.
type Task struct {
	ID          ID         `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `gorm:"not null;default:'TODO'" json:"status"`
	Priority    Priority   `gorm:"not null;default:'MEDIUM'" json:"priority"`
	AssigneeID  *ID        `json:"assigneeId"`
	ProjectID   ID         `gorm:"not null;index" json:"projectId"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Assignee *ContactSummary `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Project  *ProjectSummary `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Task) TableName() string { return "tasks" }

// BeforeSave stores the due date in UTC so due_date ordering follows the instant.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.DueDate = utcPtr(t.DueDate)
	return nil
}

// TaskPatch holds a partial task update. The Nullable fields distinguish an
// absent field from an explicit null, which clears the column.
type TaskPatch struct {
	Title       *string
	Description Nullable[string]
	Status      *TaskStatus
	Priority    *Priority
	AssigneeID  NullableID
	ProjectID   *ID
	DueDate     Nullable[time.Time]
}

func (p TaskPatch) Changes() map[string]any {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		changes["title"] = *p.Title
	}
	putNullable(changes, "description", p.Description)
	if p.Status != nil {
		changes["status"] = *p.Status
	}
	if p.Priority != nil {
		changes["priority"] = *p.Priority
	}
	putNullable(changes, "assignee_id", p.AssigneeID)
	if p.ProjectID != nil {
		changes["project_id"] = *p.ProjectID
	}
	putNullable(changes, "due_date", utcTime(p.DueDate))
	return changes
}

// TaskFilter restricts a task listing. Zero fields impose no constraint.
type TaskFilter struct {
	Status     TaskStatus
	Priority   Priority
	AssigneeID ID
	ProjectID  ID
}
