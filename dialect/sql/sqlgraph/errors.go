// Package sqlgraph classifies PostgreSQL constraint-violation errors
// surfaced by jackc/pgx so the request-time handlers emitted by this module
// can map them onto the ValidationError/DatabaseError taxonomy instead of
// leaking a raw driver error.
package sqlgraph

import (
	"errors"
	"strings"
)

// ConstraintError wraps a driver error known to be a constraint violation
// of an unspecified kind (used by callers that only need IsConstraintError).
type ConstraintError struct {
	Cause error
}

func (e *ConstraintError) Error() string { return "sqlgraph: constraint violation: " + e.Cause.Error() }
func (e *ConstraintError) Unwrap() error { return e.Cause }

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// errorCoder is an interface for driver errors that expose their SQLSTATE
// through a Code() method. pgconn.PgError does not implement it (its Code
// is a field); pgx errors are matched through sqlStateError below.
type errorCoder interface {
	Code() string
}

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by pgconn.PgError.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	// Check for SQLSTATE code (PostgreSQL, pgx)
	if e, ok := asError[sqlStateError](err); ok {
		if e.SQLState() == pgUniqueViolation {
			return true
		}
	}

	// Check for a Code() method
	if e, ok := asError[errorCoder](err); ok {
		if e.Code() == pgUniqueViolation {
			return true
		}
	}

	// Fallback to string matching for drivers that don't implement the interfaces above.
	return strings.Contains(err.Error(), "violates unique constraint")
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}

	// Check for SQLSTATE code (PostgreSQL, pgx)
	if e, ok := asError[sqlStateError](err); ok {
		if e.SQLState() == pgForeignKeyViolation {
			return true
		}
	}

	// Check for a Code() method
	if e, ok := asError[errorCoder](err); ok {
		if e.Code() == pgForeignKeyViolation {
			return true
		}
	}

	// Fallback to string matching for drivers that don't implement the interfaces above.
	return strings.Contains(err.Error(), "violates foreign key constraint")
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
// e.g. a value does not satisfy a check condition.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}

	// Check for SQLSTATE code (PostgreSQL, pgx)
	if e, ok := asError[sqlStateError](err); ok {
		if e.SQLState() == pgCheckViolation {
			return true
		}
	}

	// Check for a Code() method
	if e, ok := asError[errorCoder](err); ok {
		if e.Code() == pgCheckViolation {
			return true
		}
	}

	// Fallback to string matching for drivers that don't implement the interfaces above.
	return strings.Contains(err.Error(), "violates check constraint")
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

