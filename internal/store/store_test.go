package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"taskhub/internal/logger"
	"taskhub/internal/models"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func countMigrations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&schemaMigration{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count schema migrations: %v", err)
	}
	return n
}

func TestNewSQLiteStore_AppliesMigrations(t *testing.T) {
	store := setupTestDB(t)
	db := store.DB()

	for _, table := range []string{"contacts", "projects", "tasks", "project_members", "schema_migrations"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}

	for _, index := range []string{"idx_tasks_status", "idx_tasks_priority", "idx_tasks_assignee_id"} {
		if !db.Migrator().HasIndex("tasks", index) {
			t.Errorf("expected index %s to exist", index)
		}
	}

	if got := countMigrations(t, db); got != int64(len(migrations)) {
		t.Errorf("expected %d applied migrations, got %d", len(migrations), got)
	}
}

func TestOpen_ReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taskhub.db")

	first, err := Open(Options{Driver: "sqlite", DSN: dbPath, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	contact := &models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if err := first.DB().Create(contact).Error; err != nil {
		t.Fatalf("failed to seed contact: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	second, err := Open(Options{Driver: "sqlite", DSN: dbPath})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	t.Cleanup(func() { second.Close() })

	var got models.Contact
	if err := second.DB().First(&got, contact.ID).Error; err != nil {
		t.Fatalf("expected contact to persist: %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("expected ada@example.com, got %s", got.Email)
	}
	if n := countMigrations(t, second.DB()); n != int64(len(migrations)) {
		t.Errorf("expected migrations to be recorded once, got %d rows", n)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestApplyMigrations_DuplicateVersion(t *testing.T) {
	store := setupTestDB(t)

	noop := func(*gorm.DB) error { return nil }
	err := applyMigrations(store.DB(), logger.NewNop(), []migration{
		{version: 10, name: "a", up: noop},
		{version: 10, name: "b", up: noop},
	})
	if err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestApplyMigrations_FailureRollsBack(t *testing.T) {
	store := setupTestDB(t)
	db := store.DB()

	err := applyMigrations(db, logger.NewNop(), []migration{{
		version: 99,
		name:    "broken",
		up: func(tx *gorm.DB) error {
			if err := tx.Exec(`CREATE TABLE scratch (id INTEGER PRIMARY KEY)`).Error; err != nil {
				return err
			}
			return errors.New("boom")
		},
	}})
	if err == nil {
		t.Fatal("expected migration error")
	}

	if db.Migrator().HasTable("scratch") {
		t.Error("expected failed migration to be rolled back")
	}
	var n int64
	db.Model(&schemaMigration{}).Where("version = ?", 99).Count(&n)
	if n != 0 {
		t.Error("failed migration must not be recorded")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	store := setupTestDB(t)

	err := store.DB().Create(&models.Task{Title: "Orphan", ProjectID: 999}).Error
	if err == nil {
		t.Fatal("expected foreign key violation for missing project")
	}
	if c := Classify("create task", err); c.Kind != Unexpected {
		t.Errorf("expected foreign key failure to be unexpected, got %s", c.Kind)
	}
}

func TestClassify_SQLiteUniqueEmail(t *testing.T) {
	store := setupTestDB(t)
	db := store.DB()

	if err := db.Create(&models.Contact{FirstName: "A", LastName: "B", Email: "dup@example.com"}).Error; err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := db.Create(&models.Contact{FirstName: "C", LastName: "D", Email: "dup@example.com"}).Error
	if err == nil {
		t.Fatal("expected unique violation")
	}

	c := Classify("create contact", err)
	if c.Kind != Conflict {
		t.Errorf("expected conflict, got %s (%v)", c.Kind, err)
	}
	if !IsConflict(err) {
		t.Error("IsConflict should report the raw engine error")
	}
}

func TestClassify_SQLiteCompositeKey(t *testing.T) {
	store := setupTestDB(t)
	db := store.DB()

	project := &models.Project{Name: "P1"}
	contact := &models.Contact{FirstName: "A", LastName: "B", Email: "a@example.com"}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := db.Create(contact).Error; err != nil {
		t.Fatalf("create contact: %v", err)
	}

	member := func() *models.ProjectMember {
		return &models.ProjectMember{ProjectID: project.ID, ContactID: contact.ID, Role: "developer"}
	}
	if err := db.Create(member()).Error; err != nil {
		t.Fatalf("first membership failed: %v", err)
	}
	err := db.Create(member()).Error
	if err == nil {
		t.Fatal("expected duplicate membership to fail")
	}
	if !IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestClassify_MissingRow(t *testing.T) {
	store := setupTestDB(t)

	var c models.Contact
	err := store.DB().First(&c, 12345).Error
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	existing := NewConflict("add member", "already there", nil)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, NotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), NotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, Conflict},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, Conflict},
		{"postgres foreign key violation", &pgconn.PgError{Code: "23503"}, Unexpected},
		{"generic", errors.New("connection reset"), Unexpected},
		{"already classified", existing, Conflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("op", tt.err)
			if got == nil {
				t.Fatal("expected classification")
			}
			if got.Kind != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Kind)
			}
			if !errors.Is(got, tt.err) && got != tt.err {
				t.Errorf("classified error should wrap the original")
			}
		})
	}

	if Classify("op", nil) != nil {
		t.Error("expected nil for nil error")
	}
	if IsNotFound(nil) || IsConflict(nil) {
		t.Error("nil error has no kind")
	}
}

func TestError_Message(t *testing.T) {
	err := NewConflict("add member", "Contact is already a member of this project", errors.New("UNIQUE constraint failed"))
	if err.Error() != "Contact is already a member of this project" {
		t.Errorf("unexpected message %q", err.Error())
	}

	raw := Classify("find task", errors.New("disk I/O error"))
	if raw.Error() != "find task: disk I/O error" {
		t.Errorf("unexpected message %q", raw.Error())
	}
}

func TestRequireRows(t *testing.T) {
	store := setupTestDB(t)
	db := store.DB()

	res := db.Where("id = ?", 1).Delete(&models.Contact{})
	if err := RequireRows(res); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for zero rows, got %v", err)
	}

	contact := &models.Contact{FirstName: "A", LastName: "B", Email: "x@example.com"}
	db.Create(contact)
	res = db.Where("id = ?", contact.ID).Delete(&models.Contact{})
	if err := RequireRows(res); err != nil {
		t.Errorf("expected nil for deleted row, got %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{":memory:", ":memory:?_foreign_keys=on"},
		{"data/app.db?cache=shared", "data/app.db?cache=shared&_foreign_keys=on"},
		{"data/app.db?_foreign_keys=off", "data/app.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
