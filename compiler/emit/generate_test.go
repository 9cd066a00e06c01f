package emit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/compiler/emit"
	"github.com/pgapigen/pgapigen/config"
	"github.com/pgapigen/pgapigen/graph"
)

func testCatalog() *catalog.Model {
	return &catalog.Model{
		Schema: "public",
		Tables: []catalog.Table{
			{
				Name:       "authors",
				PrimaryKey: []string{"id"},
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.TypeUUID},
					{Name: "name", Type: catalog.TypeText},
				},
			},
			{
				Name:       "books",
				PrimaryKey: []string{"id"},
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.TypeUUID},
					{Name: "title", Type: catalog.TypeText},
					{Name: "author_id", Type: catalog.TypeUUID},
				},
				ForeignKeys: []catalog.ForeignKey{
					{From: []string{"author_id"}, ToTable: "authors", To: []string{"id"}},
				},
			},
		},
	}
}

func TestGenerate_WritesOneFilePerResourcePlusSharedFiles(t *testing.T) {
	cm := testCatalog()
	g, err := graph.Build(cm)
	require.NoError(t, err)

	out := t.TempDir()
	cfg, err := config.New(
		config.WithConnectionString("env:PGAPIGEN_TEST_DSN"),
		config.WithOutDir(out),
	)
	require.NoError(t, err)

	model := emit.Build(cm, g, cfg)
	clientFiles, err := emit.Generate(context.Background(), model)
	require.NoError(t, err)

	for _, name := range []string{"authors.go", "books.go", "schema_gen.go", "runtime_gen.go"} {
		body, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, "expected %s to be written", name)
		assert.NotEmpty(t, body)
	}

	books, err := os.ReadFile(filepath.Join(out, "books.go"))
	require.NoError(t, err)
	assert.Contains(t, string(books), "type Book struct")
	assert.Contains(t, string(books), `"GET /v1/books/{pk...}"`)
	assert.Contains(t, string(books), `"POST /v1/books/list"`)

	for _, name := range []string{"books_client.go", "client_gen.go", "sdk_gen.go"} {
		body, err := os.ReadFile(filepath.Join(cfg.OutDir.ClientDir(), name))
		require.NoError(t, err, "expected %s to be written", name)
		assert.NotEmpty(t, body)
		assert.Contains(t, clientFiles, name)
	}
}
