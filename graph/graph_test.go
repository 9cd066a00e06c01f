package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/graph"
)

func booksModel() *catalog.Model {
	return &catalog.Model{
		Schema: "public",
		Tables: []catalog.Table{
			{
				Name:       "authors",
				Columns:    []catalog.Column{{Name: "id", Type: catalog.TypeUUID}, {Name: "name", Type: catalog.TypeText}},
				PrimaryKey: []string{"id"},
			},
			{
				Name: "books",
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.TypeUUID}, {Name: "author_id", Type: catalog.TypeUUID}, {Name: "title", Type: catalog.TypeText},
				},
				PrimaryKey:  []string{"id"},
				ForeignKeys: []catalog.ForeignKey{{Name: "books_author_id_fkey", From: []string{"author_id"}, ToTable: "authors", To: []string{"id"}}},
			},
			{
				Name:       "tags",
				Columns:    []catalog.Column{{Name: "id", Type: catalog.TypeUUID}, {Name: "name", Type: catalog.TypeText}},
				PrimaryKey: []string{"id"},
			},
			{
				Name:    "book_tags",
				Columns: []catalog.Column{{Name: "book_id", Type: catalog.TypeUUID}, {Name: "tag_id", Type: catalog.TypeUUID}},
				PrimaryKey: []string{"book_id", "tag_id"},
				ForeignKeys: []catalog.ForeignKey{
					{Name: "book_tags_book_id_fkey", From: []string{"book_id"}, ToTable: "books", To: []string{"id"}},
					{Name: "book_tags_tag_id_fkey", From: []string{"tag_id"}, ToTable: "tags", To: []string{"id"}},
				},
			},
		},
	}
}

func TestBuild_BelongsToAndHasMany(t *testing.T) {
	g, err := graph.Build(booksModel())
	require.NoError(t, err)

	bookEdges := g.Edges("books")
	require.Contains(t, bookEdges, "author")
	assert.Equal(t, graph.One, bookEdges["author"].Kind)
	assert.Equal(t, "authors", bookEdges["author"].Target)

	authorEdges := g.Edges("authors")
	require.Contains(t, authorEdges, "books")
	assert.Equal(t, graph.Many, authorEdges["books"].Kind)
	assert.Equal(t, "books", authorEdges["books"].Target)
}

func TestBuild_JunctionSuppressedAndManyToMany(t *testing.T) {
	g, err := graph.Build(booksModel())
	require.NoError(t, err)

	assert.Nil(t, g.Edges("book_tags"))

	bookEdges := g.Edges("books")
	require.Contains(t, bookEdges, "tags")
	assert.Equal(t, graph.Many, bookEdges["tags"].Kind)
	assert.Equal(t, "book_tags", bookEdges["tags"].Junction)
	assert.Equal(t, []string{"book_id"}, bookEdges["tags"].JunctionFrom)
	assert.Equal(t, []string{"tag_id"}, bookEdges["tags"].JunctionTo)

	tagEdges := g.Edges("tags")
	require.Contains(t, tagEdges, "books")
	assert.Equal(t, "book_tags", tagEdges["books"].Junction)
	assert.Equal(t, []string{"tag_id"}, tagEdges["books"].JunctionFrom)
	assert.Equal(t, []string{"book_id"}, tagEdges["books"].JunctionTo)
}

func TestBuild_DisambiguationSuffix(t *testing.T) {
	m := &catalog.Model{
		Tables: []catalog.Table{
			{Name: "users", Columns: []catalog.Column{{Name: "id", Type: catalog.TypeUUID}}, PrimaryKey: []string{"id"}},
			{
				Name: "messages",
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.TypeUUID},
					{Name: "sender_id", Type: catalog.TypeUUID},
					{Name: "recipient_id", Type: catalog.TypeUUID},
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []catalog.ForeignKey{
					{Name: "messages_sender_id_fkey", From: []string{"sender_id"}, ToTable: "users", To: []string{"id"}},
					{Name: "messages_recipient_id_fkey", From: []string{"recipient_id"}, ToTable: "users", To: []string{"id"}},
				},
			},
		},
	}
	g, err := graph.Build(m)
	require.NoError(t, err)

	msgEdges := g.Edges("messages")
	assert.Contains(t, msgEdges, "user_by_sender_id")
	assert.Contains(t, msgEdges, "user_by_recipient_id")
}
