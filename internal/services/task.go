package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/internal/logger"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// taskOrder surfaces urgent work first: priority, then earliest due date
// (undated last), then newest.
var taskOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE priority")
	for _, p := range models.Priorities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}
	b.WriteString(" ELSE 0 END DESC, due_date IS NULL, due_date ASC, created_at DESC, id DESC")
	return b.String()
}()

type TaskService struct {
	base
}

func NewTaskService(db *gorm.DB, baseLog *logger.Logger) *TaskService {
	return &TaskService{base: newBase(db, baseLog, "TaskService")}
}

func selectAssignee(db *gorm.DB) *gorm.DB {
	return db.Select("id", "first_name", "last_name", "email")
}

func selectProject(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "status")
}

func (s *TaskService) enriched(ctx context.Context, withAssignee, withProject bool) *gorm.DB {
	q := s.db.WithContext(ctx)
	if withAssignee {
		q = q.Preload("Assignee", selectAssignee)
	}
	if withProject {
		q = q.Preload("Project", selectProject)
	}
	return q
}

func (s *TaskService) list(op string, q *gorm.DB) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := q.Order(taskOrder).Find(&tasks).Error; err != nil {
		return nil, s.fail(op, err)
	}
	return tasks, nil
}

// FindAll lists tasks matching every non-zero field of filter.
func (s *TaskService) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	q := s.enriched(ctx, true, true)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.ProjectID != 0 {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	return s.list("find tasks", q)
}

func (s *TaskService) FindByID(ctx context.Context, id models.ID) (*models.Task, error) {
	var task models.Task
	err := s.enriched(ctx, true, true).Take(&task, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("find task", err)
	}
	return &task, nil
}

// Create inserts the task. The referenced project and assignee must exist;
// the database enforces it.
func (s *TaskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return nil, s.fail("create task", err)
	}
	return s.FindByID(ctx, task.ID)
}

func (s *TaskService) Update(ctx context.Context, id models.ID, patch models.TaskPatch) (*models.Task, error) {
	res := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(patch.Changes())
	if err := store.RequireRows(res); err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, s.fail("update task", err)
	}
	return s.FindByID(ctx, id)
}

func (s *TaskService) UpdateStatus(ctx context.Context, id models.ID, status models.TaskStatus) (*models.Task, error) {
	return s.Update(ctx, id, models.TaskPatch{Status: &status})
}

// Remove reports whether a task was deleted.
func (s *TaskService) Remove(ctx context.Context, id models.ID) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if err := store.RequireRows(res); err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, s.fail("delete task", err)
	}
	return true, nil
}

func (s *TaskService) FindByProject(ctx context.Context, projectID models.ID) ([]models.Task, error) {
	q := s.enriched(ctx, true, false).Where("project_id = ?", projectID)
	return s.list("find tasks by project", q)
}

func (s *TaskService) FindByAssignee(ctx context.Context, assigneeID models.ID) ([]models.Task, error) {
	q := s.enriched(ctx, false, true).Where("assignee_id = ?", assigneeID)
	return s.list("find tasks by assignee", q)
}
