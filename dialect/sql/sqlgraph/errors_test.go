package sqlgraph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgapigen/pgapigen/dialect/sql/sqlgraph"
)

type fakePgError struct{ state string }

func (e fakePgError) Error() string   { return "pg error " + e.state }
func (e fakePgError) SQLState() string { return e.state }

func TestIsUniqueConstraintError_SQLState(t *testing.T) {
	assert.True(t, sqlgraph.IsUniqueConstraintError(fakePgError{"23505"}))
	assert.False(t, sqlgraph.IsUniqueConstraintError(fakePgError{"23503"}))
}

func TestIsForeignKeyConstraintError_StringFallback(t *testing.T) {
	err := errors.New(`pq: insert or update on table "books" violates foreign key constraint "books_author_id_fkey"`)
	assert.True(t, sqlgraph.IsForeignKeyConstraintError(err))
}

func TestIsConstraintError_Wrapped(t *testing.T) {
	err := &sqlgraph.ConstraintError{Cause: errors.New("boom")}
	assert.True(t, sqlgraph.IsConstraintError(err))
}
