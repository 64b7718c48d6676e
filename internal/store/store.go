// Package store owns the database handle, schema migrations and the
// translation of engine errors into a closed set of outcomes.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"taskhub/internal/logger"
)

// Options selects and configures the database engine.
type Options struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// DSN is a file path (or ":memory:") for sqlite, a connection URL for postgres.
	DSN    string
	Logger *logger.Logger
	// SlowThreshold is the query duration above which GORM logs a warning.
	SlowThreshold time.Duration
}

// Store is the shared connection pool handed to every service.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the configured engine and applies pending migrations.
func Open(opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "store", "driver", opts.Driver)

	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{
		Logger:  newGormLogger(opts.Logger, opts.SlowThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	switch opts.Driver {
	case "sqlite", "":
		db, err = openSQLite(opts.DSN, cfg)
	case "postgres":
		db, err = openPostgres(opts.DSN, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, log: log}
	if err := runMigrations(db, log); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database ready")
	return s, nil
}

// NewSQLiteStore opens a migrated sqlite database at path. Pass ":memory:"
// for a private in-memory database.
func NewSQLiteStore(path string, log *logger.Logger) (*Store, error) {
	return Open(Options{Driver: "sqlite", DSN: path, Logger: log})
}

// DB returns the GORM handle services build their queries on.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(log *logger.Logger, slow time.Duration) gormLogger.Interface {
	if log == nil {
		return gormLogger.Default.LogMode(gormLogger.Silent)
	}
	if slow <= 0 {
		slow = time.Second
	}
	return gormLogger.New(
		log.With("component", "gorm").StdLog(zapcore.WarnLevel),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
