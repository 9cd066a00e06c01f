package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/compiler/emit"
	"github.com/pgapigen/pgapigen/config"
	"github.com/pgapigen/pgapigen/graph"
	"github.com/pgapigen/pgapigen/manifest"
)

func testModel(t *testing.T) *emit.Model {
	t.Helper()
	cm := &catalog.Model{
		Schema: "public",
		Tables: []catalog.Table{
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
			{
				Name:       "authors",
				PrimaryKey: []string{"id"},
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.TypeUUID},
					{Name: "name", Type: catalog.TypeText},
				},
			},
		},
	}
	g, err := graph.Build(cm)
	require.NoError(t, err)
	cfg, err := config.New(
		config.WithConnectionString("env:PGAPIGEN_TEST_DSN"),
		config.WithOutDir(t.TempDir()),
	)
	require.NoError(t, err)
	return emit.Build(cm, g, cfg)
}

func TestBuildContract_ListsEveryResourceAndRelation(t *testing.T) {
	m := testModel(t)
	c := manifest.BuildContract(m, "v1", "2026-08-01T00:00:00Z")

	assert.Len(t, c.Resources, 2)
	var book *manifest.ResourceContract
	for i := range c.Resources {
		if c.Resources[i].Name == "Book" {
			book = &c.Resources[i]
		}
	}
	require.NotNil(t, book)
	assert.Equal(t, "/v1/books", book.Route)
	assert.Len(t, book.Methods, 5)

	require.NotEmpty(t, c.Relations)
	found := false
	for _, rel := range c.Relations {
		if rel.Source == "books" && rel.Target == "authors" {
			found = true
			assert.Equal(t, "one", rel.Kind)
		}
	}
	assert.True(t, found, "expected a books->authors relation in the contract")
}

func TestContract_MarkdownAndJSONAreConsistent(t *testing.T) {
	m := testModel(t)
	c := manifest.BuildContract(m, "v1", "2026-08-01T00:00:00Z")

	md := c.Markdown()
	assert.Contains(t, md, "## Book")
	assert.Contains(t, md, "| Source | Key | Target | Kind |")

	raw, err := c.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": "v1"`)
}
