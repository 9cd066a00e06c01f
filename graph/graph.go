// Package graph classifies the foreign keys of a catalog.Model into a
// navigable Graph of belongs-to, has-one, has-many, and many-to-many
// relations, keyed by a deterministically-derived relation name.
package graph

import (
	"fmt"
	"sort"

	"github.com/pgapigen/pgapigen/catalog"
)

// Kind is the cardinality of one side of a relation.
type Kind string

const (
	One  Kind = "one"
	Many Kind = "many"
)

// Edge is one directed relation from a source table to a target table.
type Edge struct {
	Source   string
	Target   string
	Kind     Kind
	// FromColumns/ToColumns are the foreign-key column pairing this edge is
	// derived from, FromColumns on Source and ToColumns on Target. For
	// junction-backed M:N edges they are Source's and Target's primary-key
	// columns that the junction's two foreign keys reference.
	FromColumns []string
	ToColumns   []string
	// Junction holds the junction table name for M:N edges, empty otherwise.
	Junction string
	// JunctionFrom/JunctionTo are the junction table's own two foreign-key
	// column sets, pointing at Source and Target respectively. Only set
	// for M:N edges; the loader needs both because FromColumns/ToColumns
	// above already name Source's and Target's primary-key columns, not
	// the junction row's.
	JunctionFrom []string
	JunctionTo   []string
}

// Graph maps a table name to its relation map (relation key -> Edge).
type Graph map[string]map[string]*Edge

// Edges returns the relation map for table, or nil if the table has none.
func (g Graph) Edges(table string) map[string]*Edge { return g[table] }

func (g Graph) add(table, key string, e *Edge) {
	if g[table] == nil {
		g[table] = make(map[string]*Edge)
	}
	g[table][key] = e
}

// Build classifies m into a Graph. Junction tables are detected first and
// suppressed from the resulting per-table relation maps; their two foreign
// keys become one M:N edge between each parent instead.
func Build(m *catalog.Model) (Graph, error) {
	junctions := make(map[string]catalog.ForeignKey, 2)
	_ = junctions
	jTables := map[string][2]catalog.ForeignKey{}

	for i := range m.Tables {
		t := &m.Tables[i]
		if isJunction(t) {
			jTables[t.Name] = [2]catalog.ForeignKey{t.ForeignKeys[0], t.ForeignKeys[1]}
			t.Junction = true
		}
	}

	g := make(Graph)

	for i := range m.Tables {
		t := &m.Tables[i]
		if t.Junction {
			continue
		}
		for _, fk := range t.ForeignKeys {
			parent, ok := m.Table(fk.ToTable)
			if !ok || parent.Junction {
				continue
			}
			if err := addBelongsTo(g, m, t, fk); err != nil {
				return nil, err
			}
			if err := addInverse(g, m, t, parent.Name, fk); err != nil {
				return nil, err
			}
		}
	}

	for jname, fks := range jTables {
		a, b := fks[0], fks[1]
		if err := addManyToMany(g, m, jname, a, b); err != nil {
			return nil, err
		}
		if err := addManyToMany(g, m, jname, b, a); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// isJunction applies the §3 junction heuristic: exactly two foreign keys to
// two distinct parent tables, and the union of their column sets equals
// either the table's primary key or some unique index.
func isJunction(t *catalog.Table) bool {
	if len(t.ForeignKeys) != 2 {
		return false
	}
	a, b := t.ForeignKeys[0], t.ForeignKeys[1]
	if a.ToTable == b.ToTable {
		return false
	}
	union := append(append([]string{}, a.From...), b.From...)
	return t.UniqueColumnSet(union)
}

func addBelongsTo(g Graph, m *catalog.Model, child *catalog.Table, fk catalog.ForeignKey) error {
	key := singular(fk.ToTable)
	shared := 0
	for _, other := range child.ForeignKeys {
		if other.ToTable == fk.ToTable {
			shared++
		}
	}
	if existing, ok := g[child.Name][key]; shared > 1 || (ok && conflicts(existing, fk.ToTable)) {
		key = disambiguate(key, fk.From)
	}
	g.add(child.Name, key, &Edge{
		Source: child.Name, Target: fk.ToTable, Kind: One,
		FromColumns: fk.From, ToColumns: fk.To,
	})
	return nil
}

func addInverse(g Graph, m *catalog.Model, child *catalog.Table, parentName string, fk catalog.ForeignKey) error {
	kind := Many
	if child.UniqueColumnSet(fk.From) {
		kind = One
	}
	key := plural(child.Name)
	if kind == One {
		key = singular(child.Name)
	}
	shared := 0
	for _, other := range child.ForeignKeys {
		if other.ToTable == parentName {
			shared++
		}
	}
	if existing, ok := g[parentName][key]; shared > 1 || (ok && conflicts(existing, child.Name)) {
		key = disambiguate(key, fk.From)
	}
	g.add(parentName, key, &Edge{
		Source: parentName, Target: child.Name, Kind: kind,
		FromColumns: fk.To, ToColumns: fk.From,
	})
	return nil
}

func addManyToMany(g Graph, m *catalog.Model, junction string, from, to catalog.ForeignKey) error {
	key := plural(to.ToTable)
	if existing, ok := g[from.ToTable][key]; ok && conflicts(existing, to.ToTable) {
		key = disambiguate(key, from.From)
	}
	g.add(from.ToTable, key, &Edge{
		Source: from.ToTable, Target: to.ToTable, Kind: Many,
		FromColumns: from.To, ToColumns: to.To,
		Junction:     junction,
		JunctionFrom: from.From,
		JunctionTo:   to.From,
	})
	return nil
}

func conflicts(existing *Edge, target string) bool {
	return existing.Target != target
}

// disambiguate appends a deterministic suffix built from the owning
// foreign-key's column names, per §3: "_by_<fk-column>".
func disambiguate(key string, fkCols []string) string {
	cols := append([]string{}, fkCols...)
	sort.Strings(cols)
	suffix := ""
	for _, c := range cols {
		suffix += "_" + c
	}
	return fmt.Sprintf("%s_by%s", key, suffix)
}
