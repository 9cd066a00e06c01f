package sql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgapigen/pgapigen/dialect/sql"
)

func TestFieldEQ_NilBecomesIsNull(t *testing.T) {
	q := sql.Build(sql.FieldEQ("name", nil))
	assert.Equal(t, `"name" IS NULL`, q.Query)
	assert.Empty(t, q.Args)
}

func TestFieldEQ_Value(t *testing.T) {
	q := sql.Build(sql.FieldEQ("name", "Jane"))
	assert.Equal(t, `"name" = $1`, q.Query)
	assert.Equal(t, []any{"Jane"}, q.Args)
}

func TestFieldIn_Empty(t *testing.T) {
	q := sql.Build(sql.FieldIn("id"))
	assert.Equal(t, "false", q.Query)
}

func TestFieldIn_NotEmpty(t *testing.T) {
	q := sql.Build(sql.FieldIn("id", "a", "b"))
	assert.Contains(t, q.Query, `"id" = ANY(`)
	assert.Equal(t, []any{[]any{"a", "b"}}, q.Args)
}

func TestFieldNotIn_Empty(t *testing.T) {
	q := sql.Build(sql.FieldNotIn("id"))
	assert.Equal(t, "true", q.Query)
}

func TestAnd_Empty(t *testing.T) {
	q := sql.Build(sql.And())
	assert.Equal(t, "true", q.Query)
}

func TestOr_Empty(t *testing.T) {
	q := sql.Build(sql.Or())
	assert.Equal(t, "false", q.Query)
}

func TestAnd_Combines(t *testing.T) {
	q := sql.Build(sql.And(sql.FieldEQ("a", 1), sql.FieldEQ("b", 2)))
	assert.Equal(t, `("a" = $1 AND "b" = $2)`, q.Query)
}

func TestNot_Wraps(t *testing.T) {
	q := sql.Build(sql.Not(sql.FieldEQ("a", 1)))
	assert.Equal(t, `NOT ("a" = $1)`, q.Query)
}

func TestFieldContains_EscapesWildcards(t *testing.T) {
	q := sql.Build(sql.FieldContains("name", "50%_off"))
	assert.Equal(t, []any{`%50\%\_off%`}, q.Args)
}
