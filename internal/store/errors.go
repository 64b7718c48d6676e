package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Kind is the closed set of outcomes a storage failure is classified into.
type Kind int

const (
	Unexpected Kind = iota
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error is a classified storage failure. Message, when set, is safe to show
// to API clients.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil && e.Op != "":
		return e.Op + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps an engine error onto a Kind. It is the only place that
// knows engine-specific codes. A nil err yields nil.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: NotFound, Op: op, Err: err}
	case isDuplicateKey(err):
		return &Error{Kind: Conflict, Op: op, Err: err}
	default:
		return &Error{Kind: Unexpected, Op: op, Err: err}
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505" // unique_violation
	}

	return false
}

// NewConflict builds a Conflict with a client-facing message.
func NewConflict(op, message string, cause error) *Error {
	return &Error{Kind: Conflict, Op: op, Message: message, Err: cause}
}

func IsNotFound(err error) bool { return kindOf(err) == NotFound }

func IsConflict(err error) bool { return kindOf(err) == Conflict }

func kindOf(err error) Kind {
	if c := Classify("", err); c != nil {
		return c.Kind
	}
	return Unexpected
}

// RequireRows turns a mutation that matched nothing into gorm.ErrRecordNotFound,
// so an absent target classifies as NotFound.
func RequireRows(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
