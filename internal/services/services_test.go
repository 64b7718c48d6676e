package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/models"
	"taskhub/internal/store"
)

type fixture struct {
	db       *gorm.DB
	contacts *ContactService
	tasks    *TaskService
	projects *ProjectService
}

func setupTestDB(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	db := s.DB()
	return &fixture{
		db:       db,
		contacts: NewContactService(db, nil),
		tasks:    NewTaskService(db, nil),
		projects: NewProjectService(db, nil),
	}
}

func (f *fixture) contact(t *testing.T, email string) *models.Contact {
	t.Helper()
	c, err := f.contacts.Create(context.Background(), &models.Contact{FirstName: "First", LastName: "Last", Email: email})
	if err != nil {
		t.Fatalf("create contact %s: %v", email, err)
	}
	return c
}

func (f *fixture) project(t *testing.T, name string) *models.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), &models.Project{Name: name})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

func (f *fixture) task(t *testing.T, task models.Task) *models.Task {
	t.Helper()
	created, err := f.tasks.Create(context.Background(), &task)
	if err != nil {
		t.Fatalf("create task %s: %v", task.Title, err)
	}
	return created
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func strPtr(s string) *string { return &s }

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return &d
}
