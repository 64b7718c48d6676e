// Package services implements the record operations behind every route:
// lookups, filtered listings, mutations and project membership.
//
// Mutations whose target row is gone are reported as a nil result (or
// false for deletes) rather than an error. Uniqueness violations are
// returned as *store.Error of kind Conflict with a client-facing message.
// Every other storage failure is logged and returned unchanged.
package services

import (
	"gorm.io/gorm"

	"taskhub/internal/logger"
	"taskhub/internal/store"
)

type base struct {
	db  *gorm.DB
	log *logger.Logger
}

func newBase(db *gorm.DB, baseLog *logger.Logger, name string) base {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return base{db: db, log: baseLog.With("service", name)}
}

// fail reports a storage error for op. Unexpected errors come back as-is.
func (b base) fail(op string, err error) error {
	c := store.Classify(op, err)
	switch c.Kind {
	case store.Conflict:
		b.log.Warn("conflict", "op", op, "error", err)
		return c
	case store.NotFound:
		b.log.Debug("not found", "op", op)
		return c
	default:
		b.log.Error("storage operation failed", "op", op, "error", err)
		return err
	}
}

// conflict wraps a uniqueness violation with message, or defers to fail.
func (b base) conflict(op string, err error, message string) error {
	if store.IsConflict(err) {
		b.log.Warn("conflict", "op", op, "error", err)
		return store.NewConflict(op, message, err)
	}
	return b.fail(op, err)
}
