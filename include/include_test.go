package include_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/graph"
	"github.com/pgapigen/pgapigen/include"
)

func selfReferentialGraph() graph.Graph {
	return graph.Graph{
		"categories": {
			"children": &graph.Edge{Source: "categories", Target: "categories", Kind: graph.Many},
			"parent":   &graph.Edge{Source: "categories", Target: "categories", Kind: graph.One},
		},
	}
}

func TestBuild_CycleSafeAtAnyDepth(t *testing.T) {
	for depth := 0; depth <= 10; depth++ {
		d := include.Build("categories", selfReferentialGraph(), depth)
		assert.Equal(t, "categories", d.Table)
		assert.NotNil(t, d)
	}
}

func TestBuild_StopsAtMaxDepth(t *testing.T) {
	d := include.Build("categories", selfReferentialGraph(), 1)
	var children *include.RelationDescriptor
	for i := range d.Relations {
		if d.Relations[i].Key == "children" {
			children = &d.Relations[i]
		}
	}
	require.NotNil(t, children)
	assert.Equal(t, "categories", children.Edge.Target)
	assert.Nil(t, children.Nested, "cycle guard should stop recursion back into an ancestor on the path")
}

func TestParse_UnknownRelationSkipped(t *testing.T) {
	g := graph.Graph{"authors": {"books": &graph.Edge{Source: "authors", Target: "books", Kind: graph.Many}}}
	spec, err := include.Parse(json.RawMessage(`{"books": true, "nope": true}`), "authors", g, 3)
	require.NoError(t, err)
	assert.Contains(t, spec.Relations, "books")
	assert.NotContains(t, spec.Relations, "nope")
}

func TestParse_DepthExceeded(t *testing.T) {
	g := selfReferentialGraph()
	raw := json.RawMessage(`{"children":{"include":{"children":{"include":{"children":true}}}}}`)
	_, err := include.Parse(raw, "categories", g, 1)
	require.Error(t, err)
}

func TestParse_SelectExcludeMutuallyExclusive(t *testing.T) {
	g := graph.Graph{"authors": {"books": &graph.Edge{Source: "authors", Target: "books", Kind: graph.Many}}}
	raw := json.RawMessage(`{"books": {"select": ["title"], "exclude": ["id"]}}`)
	_, err := include.Parse(raw, "authors", g, 3)
	require.Error(t, err)
}
