package sqlgraph_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entsql "github.com/pgapigen/pgapigen/dialect/sql"
	"github.com/pgapigen/pgapigen/dialect/sql/sqlgraph"
)

func TestLoad_BelongsTo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "authors" WHERE \(\("id" = \$1\)\)`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("a1", "Jane"))

	conn := entsql.OpenDB(db)
	parents := []sqlgraph.Row{{"id": "b1", "author_id": "a1"}}
	plan := &sqlgraph.Plan{Edges: map[string]sqlgraph.Edge{
		"author": {Spec: sqlgraph.EdgeSpec{Rel: sqlgraph.BelongsTo, Table: "authors", FromColumns: []string{"author_id"}, ToColumns: []string{"id"}}},
	}}

	out, err := sqlgraph.Load(context.Background(), conn, parents, plan, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	author, ok := out[0]["author"].(sqlgraph.Row)
	require.True(t, ok)
	assert.Equal(t, "Jane", author["name"])
	assert.Equal(t, "b1", parents[0]["id"], "input parent rows must not be mutated")
	_, hadAuthorBefore := parents[0]["author"]
	assert.False(t, hadAuthorBefore)
}

func TestLoad_HasMany_EmptyWhenNoParents(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	conn := entsql.OpenDB(db)

	plan := &sqlgraph.Plan{Edges: map[string]sqlgraph.Edge{
		"books": {Spec: sqlgraph.EdgeSpec{Rel: sqlgraph.HasMany, Table: "books", FromColumns: []string{"id"}, ToColumns: []string{"author_id"}}},
	}}
	out, err := sqlgraph.Load(context.Background(), conn, nil, plan, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLoad_DegradesEdgeOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "books"`).WillReturnError(assert.AnError)

	conn := entsql.OpenDB(db)
	parents := []sqlgraph.Row{{"id": "a1"}}
	plan := &sqlgraph.Plan{Edges: map[string]sqlgraph.Edge{
		"books": {Spec: sqlgraph.EdgeSpec{Rel: sqlgraph.HasMany, Table: "books", FromColumns: []string{"id"}, ToColumns: []string{"author_id"}}},
	}}
	out, err := sqlgraph.Load(context.Background(), conn, parents, plan, nil)
	require.NoError(t, err, "per-edge failures degrade gracefully, the overall Load call does not fail")
	assert.Equal(t, []sqlgraph.Row{}, out[0]["books"])
}
