package sql_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/dialect"
	entsql "github.com/pgapigen/pgapigen/dialect/sql"
)

func TestConn_Exec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE "books" SET "title" = \$1 WHERE "id" = \$2`).
		WithArgs("P&P", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	drv := entsql.OpenDB(db)
	err = drv.Exec(context.Background(), `UPDATE "books" SET "title" = $1 WHERE "id" = $2`, []any{"P&P", "1"}, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title"}).AddRow("1", "P&P")
	mock.ExpectQuery(`SELECT \* FROM "books"`).WillReturnRows(rows)

	drv := entsql.OpenDB(db)
	var out entsql.Rows
	err = drv.Query(context.Background(), `SELECT * FROM "books"`, []any{}, &out)
	require.NoError(t, err)
	defer out.Close()
	require.True(t, out.Next())
	var id, title string
	require.NoError(t, out.Scan(&id, &title))
	assert.Equal(t, "1", id)
	assert.Equal(t, "P&P", title)
}

func TestDriver_Dialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := entsql.OpenDB(db)
	assert.Equal(t, dialect.Postgres, drv.Dialect())
}

func TestWithVar_RoundTrip(t *testing.T) {
	ctx := entsql.WithVar(context.Background(), "app.user_id", "42")
	v, ok := entsql.VarFromContext(ctx, "app.user_id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = entsql.VarFromContext(ctx, "app.missing")
	assert.False(t, ok)
}

func TestConn_ExecSetsAndResetsSessionVar(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`SET app\.user_id = '42'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "sessions" WHERE "id" = \$1`).
		WithArgs("1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`RESET app\.user_id`).WillReturnResult(sqlmock.NewResult(0, 0))

	drv := entsql.OpenDB(db)
	ctx := entsql.WithVar(context.Background(), "app.user_id", "42")
	err = drv.Exec(ctx, `DELETE FROM "sessions" WHERE "id" = $1`, []any{"1"}, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
