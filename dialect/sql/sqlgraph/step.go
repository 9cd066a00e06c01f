package sqlgraph

import "github.com/pgapigen/pgapigen/dialect/sql"

// Rel mirrors the Edge.Kind distinction from the graph package plus the
// junction annotation, collapsed into the four shapes the loader dispatch
// loop switches on. Keeping this as a small tagged variant (per the design
// notes on replacing per-edge closures) rather than a polymorphic
// interface keeps the loader linear and easy to step through.
type Rel int

const (
	BelongsTo Rel = iota // current.FK -> target.PK
	HasOne               // target.FK -> current.PK, FK is unique
	HasMany              // target.FK -> current.PK
	ManyToMany           // via junction table
)

// EdgeSpec is one compiled edge the loader can hydrate: everything it needs
// to know to batch-query the target table (or junction) for a set of
// parent rows, independent of how the edge was discovered in the graph.
type EdgeSpec struct {
	Rel Rel

	// Table is the target table to query for BelongsTo/HasOne/HasMany, or
	// the junction table for ManyToMany.
	Table string
	// TargetTable is set only for ManyToMany, naming the far side beyond
	// the junction.
	TargetTable string

	// FromColumns are columns read off each parent row.
	FromColumns []string
	// ToColumns are the columns on Table (or, for ManyToMany, on the
	// junction) that FromColumns are matched against.
	ToColumns []string
	// JunctionToTarget pairs junction columns with TargetTable's PK columns,
	// used only for ManyToMany's second step.
	JunctionToTarget []string
	TargetPK         []string

	Limit   int // 0 means unlimited
	Offset  int
	OrderBy []string
	Desc    []bool
	Where   func(*sql.Builder)
}
