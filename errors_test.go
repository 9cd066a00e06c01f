package pgapigen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgapigen/pgapigen"
)

func TestNotFoundError(t *testing.T) {
	err := pgapigen.NewNotFoundError("users", []any{"1"})
	assert.True(t, errors.Is(err, pgapigen.ErrNotFound))
	assert.Contains(t, err.Error(), "users")

	wrapped := fmt.Errorf("wrapper: %w", err)
	assert.True(t, errors.Is(wrapped, pgapigen.ErrNotFound))
}

func TestValidationError(t *testing.T) {
	err := pgapigen.NewValidationError("where.name", "unknown column")
	assert.True(t, err.HasIssues())
	err.AddIssue("limit", "must be non-negative")
	assert.Len(t, err.Issues, 2)
	assert.True(t, errors.Is(err, pgapigen.ErrValidation))
}

func TestIncludeStitchError(t *testing.T) {
	cause := errors.New("connection reset")
	err := pgapigen.NewIncludeStitchError("books", "authors", cause)
	assert.True(t, errors.Is(err, pgapigen.ErrIncludeStitch))
	assert.ErrorIs(t, err, cause)
}

func TestConfigErrorIs(t *testing.T) {
	err := pgapigen.NewConfigError("connectionString", nil, "must not be empty")
	assert.True(t, errors.Is(err, pgapigen.ErrConfig))
}

func TestDatabaseErrorSafeMessage(t *testing.T) {
	cause := errors.New("pq: relation \"x\" does not exist")
	err := pgapigen.NewDatabaseError("query failed", cause)
	assert.True(t, errors.Is(err, pgapigen.ErrDatabase))
	assert.ErrorIs(t, err, cause)
}
