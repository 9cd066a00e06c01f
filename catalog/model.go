// Package catalog builds a normalized, read-only description of a
// PostgreSQL schema (the Model) by querying the system catalog. Nothing in
// this package touches user data; every query here runs against
// pg_catalog/information_schema only.
package catalog

// ColumnType is the semantic type of a column, independent of its exact
// Postgres type name. The emitter and filter compiler both switch on this
// rather than on raw type strings.
type ColumnType int

const (
	TypeUnknown ColumnType = iota
	TypeUUID
	TypeText
	TypeInteger
	TypeFloating
	TypeNumeric
	TypeBoolean
	TypeTimestamp
	TypeDate
	TypeJSON
	TypeBytea
	TypeArray
	TypeEnum
	TypeVector
)

func (t ColumnType) String() string {
	switch t {
	case TypeUUID:
		return "uuid"
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeFloating:
		return "floating"
	case TypeNumeric:
		return "numeric"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	case TypeDate:
		return "date"
	case TypeJSON:
		return "json"
	case TypeBytea:
		return "bytea"
	case TypeArray:
		return "array"
	case TypeEnum:
		return "enum"
	case TypeVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Comparable reports whether the type supports $gt/$gte/$lt/$lte ordering
// in the filter compiler.
func (t ColumnType) Comparable() bool {
	switch t {
	case TypeBoolean, TypeJSON, TypeArray, TypeUnknown:
		return false
	default:
		return true
	}
}

// Column describes one column of a table in catalog order.
type Column struct {
	Name       string
	Type       ColumnType
	PGType     string // raw Postgres type name, e.g. "character varying", "vector(1536)"
	EnumName   string // set when Type == TypeEnum
	ArrayElem  ColumnType
	VectorDim  int // set when Type == TypeVector
	Nullable   bool
	HasDefault bool
}

// ForeignKeyAction mirrors Postgres's confupdtype/confdeltype values.
type ForeignKeyAction string

const (
	ActionNoAction   ForeignKeyAction = "no_action"
	ActionRestrict   ForeignKeyAction = "restrict"
	ActionCascade    ForeignKeyAction = "cascade"
	ActionSetNull    ForeignKeyAction = "set_null"
	ActionSetDefault ForeignKeyAction = "set_default"
)

// ForeignKey describes one foreign-key constraint. From and To are ordinally
// paired: From[i] in this table references To[i] in ToTable.
type ForeignKey struct {
	Name     string
	From     []string
	ToTable  string
	To       []string
	OnUpdate ForeignKeyAction
	OnDelete ForeignKeyAction
}

// Index describes a unique index (plain or the primary key's backing index).
type Index struct {
	Name      string
	Columns   []string
	IsPrimary bool
}

// Table describes one base table of the introspected schema.
type Table struct {
	Schema      string
	Name        string
	Columns     []Column
	PrimaryKey  []string
	Unique      []Index
	ForeignKeys []ForeignKey
	// Junction is set by the classifier's post-pass (see graph package); the
	// introspector always leaves it false.
	Junction bool
}

// Column looks up a column by name, or returns a zero Column and false.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// UniqueColumnSet reports whether cols (in any order) exactly match the
// primary key or some unique index of t.
func (t *Table) UniqueColumnSet(cols []string) bool {
	if sameSet(t.PrimaryKey, cols) {
		return true
	}
	for _, ix := range t.Unique {
		if sameSet(ix.Columns, cols) {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}

// Enum describes a Postgres enum type and its ordered labels.
type Enum struct {
	Schema string
	Name   string
	Labels []string
}

// Model is the complete, frozen description of one introspected schema. It
// is built once by Introspect and never mutated afterward; the classifier,
// filter compiler, and emitter all consume it read-only.
type Model struct {
	Schema string
	Tables []Table
	Enums  []Enum
}

// Table looks up a table by name within the model's schema.
func (m *Model) Table(name string) (*Table, bool) {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i], true
		}
	}
	return nil, false
}

// Enum looks up an enum type by name.
func (m *Model) Enum(name string) (*Enum, bool) {
	for i := range m.Enums {
		if m.Enums[i].Name == name {
			return &m.Enums[i], true
		}
	}
	return nil, false
}
