package filter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/dialect/sql"
	"github.com/pgapigen/pgapigen/filter"
)

func authorsColumns() filter.Columns {
	return filter.ColumnsOf(&catalog.Table{
		Name: "authors",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.TypeUUID},
			{Name: "name", Type: catalog.TypeText},
			{Name: "age", Type: catalog.TypeInteger},
		},
	})
}

func compileJSON(t *testing.T, raw string) sql.Query {
	t.Helper()
	f, err := filter.Parse(json.RawMessage(raw), filter.MaxGroupDepth)
	require.NoError(t, err)
	pred, err := filter.Compile(f, authorsColumns())
	require.NoError(t, err)
	return sql.Build(pred)
}

func TestCompile_SQLInjectionProbe(t *testing.T) {
	q := compileJSON(t, `{"name": "Robert'); DROP TABLE authors;--"}`)
	assert.Contains(t, q.Query, `"name" = $1`)
	assert.NotContains(t, q.Query, "DROP TABLE")
	require.Len(t, q.Args, 1)
	assert.Equal(t, "Robert'); DROP TABLE authors;--", q.Args[0])
}

func TestCompile_NullEquivalence(t *testing.T) {
	a := compileJSON(t, `{"name": null}`)
	b := compileJSON(t, `{"name": {"$is": null}}`)
	assert.Equal(t, a.Query, b.Query)

	c := compileJSON(t, `{"name": {"$ne": null}}`)
	d := compileJSON(t, `{"name": {"$isNot": null}}`)
	assert.Equal(t, c.Query, d.Query)
}

func TestCompile_EmptyGroups(t *testing.T) {
	all := compileJSON(t, `{"$and": []}`)
	assert.Equal(t, "true", all.Query)

	none := compileJSON(t, `{"$or": []}`)
	assert.Equal(t, "false", none.Query)
}

func TestCompile_OrWithILike(t *testing.T) {
	q := compileJSON(t, `{"$or": [{"name": {"$ilike": "%a%"}}, {"name": {"$ilike": "%b%"}}]}`)
	assert.Contains(t, q.Query, "ILIKE")
	assert.Len(t, q.Args, 2)
}

func TestCompile_UnknownColumnRejected(t *testing.T) {
	_, err := filter.Compile(filter.Filter{Leaves: []filter.Leaf{{Column: "nope", Ops: map[filter.Op]any{filter.OpEQ: 1}}}}, authorsColumns())
	require.Error(t, err)
}

func TestCompile_LikeRejectedOnNonText(t *testing.T) {
	f, err := filter.Parse(json.RawMessage(`{"age": {"$like": "1%"}}`), filter.MaxGroupDepth)
	require.NoError(t, err)
	_, err = filter.Compile(f, authorsColumns())
	require.Error(t, err)
}

func TestCompile_ComparableRejectedOnMismatch(t *testing.T) {
	cols := filter.ColumnsOf(&catalog.Table{Columns: []catalog.Column{{Name: "active", Type: catalog.TypeBoolean}}})
	f, err := filter.Parse(json.RawMessage(`{"active": {"$gt": true}}`), filter.MaxGroupDepth)
	require.NoError(t, err)
	_, err = filter.Compile(f, cols)
	require.Error(t, err)
}

func TestCompile_InEmptyYieldsFalse(t *testing.T) {
	q := compileJSON(t, `{"name": {"$in": []}}`)
	assert.Equal(t, "false", q.Query)
}

func TestParse_GroupDepthExceeded(t *testing.T) {
	nested := `{"$and":[{"$and":[{"$and":[{"name":"x"}]}]}]}`
	_, err := filter.Parse(json.RawMessage(nested), filter.MaxGroupDepth)
	require.Error(t, err)
}

func TestParse_TwoGroupKeysRejected(t *testing.T) {
	_, err := filter.Parse(json.RawMessage(`{"$and": [], "$or": []}`), filter.MaxGroupDepth)
	require.Error(t, err)
}
