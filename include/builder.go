package include

import (
	"sort"

	"github.com/pgapigen/pgapigen/graph"
)

// Descriptor is the generation-time (not request-time) shape the emitter
// walks to produce one table's concrete include type: for each relation key
// reachable from Table, either a leaf boolean-or-options marker or a nested
// Descriptor for the target table at depth-1.
type Descriptor struct {
	Table     string
	Relations []RelationDescriptor
}

// RelationDescriptor is one entry of a Descriptor.
type RelationDescriptor struct {
	Key    string
	Edge   *graph.Edge
	Nested *Descriptor // nil once maxDepth is reached or the path would cycle
}

// Build enumerates every relation path reachable from root up to maxDepth,
// breaking cycles the moment a relation would revisit a table already on
// the current path — per §4.3, the cycle guard is path-scoped, not a
// global visited-set, so the same table may appear on two independent
// branches of the tree without being pruned.
func Build(root string, g graph.Graph, maxDepth int) *Descriptor {
	return buildAt(root, g, maxDepth, []string{root})
}

func buildAt(table string, g graph.Graph, remaining int, path []string) *Descriptor {
	d := &Descriptor{Table: table}
	edges := g.Edges(table)
	if len(edges) == 0 {
		return d
	}

	keys := make([]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		edge := edges[key]
		rd := RelationDescriptor{Key: key, Edge: edge}
		if remaining > 0 && !onPath(path, edge.Target) {
			rd.Nested = buildAt(edge.Target, g, remaining-1, append(append([]string{}, path...), edge.Target))
		}
		d.Relations = append(d.Relations, rd)
	}
	return d
}

func onPath(path []string, table string) bool {
	for _, p := range path {
		if p == table {
			return true
		}
	}
	return false
}
