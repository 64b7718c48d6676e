package store

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/logger"
	"taskhub/internal/models"
)

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// schemaMigration records an applied migration.
type schemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

var migrations = []migration{
	{
		version: 1,
		name:    "create_core_tables",
		up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.Contact{},
				&models.Project{},
				&models.Task{},
				&models.ProjectMember{},
			)
		},
	},
	{
		version: 2,
		name:    "task_filter_indexes",
		up: func(tx *gorm.DB) error {
			for _, stmt := range []string{
				`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
				`CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority)`,
				`CREATE INDEX IF NOT EXISTS idx_tasks_assignee_id ON tasks(assignee_id)`,
			} {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
	},
}

func runMigrations(db *gorm.DB, log *logger.Logger) error {
	return applyMigrations(db, log, migrations)
}

func applyMigrations(db *gorm.DB, log *logger.Logger, list []migration) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	ordered, err := sortMigrations(list)
	if err != nil {
		return err
	}

	applied, err := appliedMigrationVersions(db)
	if err != nil {
		return err
	}

	for _, m := range ordered {
		if applied[m.version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		log.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

func sortMigrations(list []migration) ([]migration, error) {
	ordered := make([]migration, len(list))
	copy(ordered, list)

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].version < ordered[j].version
	})

	for i := 1; i < len(ordered); i++ {
		if ordered[i].version == ordered[i-1].version {
			return nil, fmt.Errorf("duplicate migration version: %d", ordered[i].version)
		}
	}
	return ordered, nil
}

func appliedMigrationVersions(db *gorm.DB) (map[int]bool, error) {
	var rows []schemaMigration
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}

	versions := make(map[int]bool, len(rows))
	for _, r := range rows {
		versions[r.Version] = true
	}
	return versions, nil
}

func applyMigration(db *gorm.DB, m migration) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := m.up(tx); err != nil {
			return fmt.Errorf("failed to apply migration %d_%s: %w", m.version, m.name, err)
		}
		if err := tx.Create(&schemaMigration{Version: m.version, Name: m.name}).Error; err != nil {
			return fmt.Errorf("failed to record migration %d_%s: %w", m.version, m.name, err)
		}
		return nil
	})
}
