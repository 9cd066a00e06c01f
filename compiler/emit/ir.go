// Package emit turns a catalog.Model and its graph.Graph into generated Go
// source: one route file per table exposing CRUD + relational read
// endpoints, plus a typed client SDK that talks to them. It plays the role
// compiler/gen's JenniferGenerator played for Ent schemas, but the IR it
// walks is built from introspected tables instead of a user-authored
// schema package, and what it emits is HTTP routes and a REST client
// instead of an in-process fluent query API.
package emit

import (
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/config"
	"github.com/pgapigen/pgapigen/graph"
)

// camelize converts a snake_case identifier to UpperCamelCase. The rest of
// the emitter needs this for every table/column name it turns into a Go
// identifier, so it lives here rather than in graph, which only needs
// singular/plural forms.
func camelize(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

// Resource is the per-table unit of generation: a table plus its outgoing
// relation edges, named the way both the route package and the client SDK
// will refer to it.
type Resource struct {
	Table      *catalog.Table
	TypeName   string // Go identifier, e.g. "Book"
	RouteName  string // URL path segment, e.g. "books"
	PrimaryKey []catalog.Column
	Relations  []RelationField
}

// RelationField is one outgoing edge of a Resource, carrying enough of the
// graph.Edge to drive both include-spec validation and loader wiring.
type RelationField struct {
	Key  string // the include/relation key, e.g. "author" or "books"
	Edge *graph.Edge
}

// Model is the full IR the emitter walks: one Resource per table, sorted
// by table name for deterministic file output order.
type Model struct {
	Schema    string
	Resources []*Resource
	Graph     graph.Graph
	Enums     []catalog.Enum
	Config    *config.Config
}

var ruleset = inflect.NewDefaultRuleset()

// Build assembles a Model from an introspected catalog and its classified
// relation graph.
func Build(cm *catalog.Model, g graph.Graph, cfg *config.Config) *Model {
	m := &Model{Schema: cm.Schema, Graph: g, Enums: cm.Enums, Config: cfg}
	for i := range cm.Tables {
		t := &cm.Tables[i]
		r := &Resource{
			Table:     t,
			TypeName:  camelize(ruleset.Singularize(t.Name)),
			RouteName: t.Name,
		}
		for _, pkCol := range t.PrimaryKey {
			if c, ok := t.Column(pkCol); ok {
				r.PrimaryKey = append(r.PrimaryKey, c)
			}
		}
		keys := make([]string, 0, len(g[t.Name]))
		for k := range g[t.Name] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.Relations = append(r.Relations, RelationField{Key: k, Edge: g[t.Name][k]})
		}
		m.Resources = append(m.Resources, r)
	}
	sort.Slice(m.Resources, func(i, j int) bool { return m.Resources[i].Table.Name < m.Resources[j].Table.Name })
	return m
}

// GoFieldName returns the exported struct field name for a column.
func GoFieldName(c catalog.Column) string {
	return camelize(c.Name)
}
