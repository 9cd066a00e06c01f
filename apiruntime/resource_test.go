package apiruntime_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/apiruntime"
	"github.com/pgapigen/pgapigen/catalog"
	entsql "github.com/pgapigen/pgapigen/dialect/sql"
	"github.com/pgapigen/pgapigen/filter"
)

func booksResource() *apiruntime.Resource {
	table := &catalog.Table{
		Schema:     "public",
		Name:       "books",
		PrimaryKey: []string{"id"},
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.TypeUUID},
			{Name: "title", Type: catalog.TypeText},
		},
	}
	return &apiruntime.Resource{
		Schema:  "public",
		Table:   table,
		Columns: filter.ColumnsOf(table),
	}
}

func TestResource_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "public"\."books" WHERE true`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT \* FROM "public"\."books" WHERE true LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("1", "P&P"))

	r := booksResource()
	drv := entsql.OpenDB(db)
	rows, total, err := r.List(context.Background(), drv, apiruntime.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "P&P", rows[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResource_GetByPK_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "public"\."books" WHERE "id" = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	r := booksResource()
	drv := entsql.OpenDB(db)
	_, err = r.GetByPK(context.Background(), drv, []any{"missing"}, nil)
	require.Error(t, err)
}

func TestResource_Delete_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`UPDATE "public"\."books" SET "deleted_at" = now\(\) WHERE "id" = \$1 RETURNING \*`).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("1", "P&P"))

	r := booksResource()
	drv := entsql.OpenDB(db)
	row, err := r.Delete(context.Background(), drv, []any{"1"}, "deleted_at")
	require.NoError(t, err)
	assert.Equal(t, "P&P", row["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResource_Update_StripsPrimaryKeyAndRejectsEmptyPatch(t *testing.T) {
	r := booksResource()
	drv := entsql.OpenDB(nil)
	_, err := r.Update(context.Background(), drv, []any{"1"}, map[string]any{"id": "1"})
	require.Error(t, err)
}

func TestResource_GetByPK_WrongPKCountIsNotFound(t *testing.T) {
	r := booksResource()
	drv := entsql.OpenDB(nil)
	_, err := r.GetByPK(context.Background(), drv, []any{"1", "2"}, nil)
	require.Error(t, err)
}
