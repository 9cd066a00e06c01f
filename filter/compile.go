package filter

import (
	"fmt"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/dialect/sql"
)

// MaxGroupDepth is the nesting limit for $and/$or groups imposed by §4.4.
const MaxGroupDepth = 2

// Columns is the allow-list a Filter compiles against: every column
// identifier Compile emits is checked against this set before it reaches
// the SQL builder.
type Columns map[string]catalog.Column

// ColumnsOf builds a Columns allow-list from a table descriptor.
func ColumnsOf(t *catalog.Table) Columns {
	cols := make(Columns, len(t.Columns))
	for _, c := range t.Columns {
		cols[c.Name] = c
	}
	return cols
}

// Compile renders f against cols as a parameterized predicate. The returned
// func composes with other predicates passed to sql.And/sql.Or, or can be
// built standalone via sql.Build.
func Compile(f Filter, cols Columns) (func(*sql.Builder), error) {
	if f.Empty() {
		return func(b *sql.Builder) { b.WriteString("true") }, nil
	}

	preds := make([]func(*sql.Builder), 0, len(f.Leaves)+1)
	for _, leaf := range f.Leaves {
		p, err := compileLeaf(leaf, cols)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if f.Group != nil {
		g, err := compileGroup(*f.Group, cols)
		if err != nil {
			return nil, err
		}
		preds = append(preds, g)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return sql.And(preds...), nil
}

func compileGroup(g Group, cols Columns) (func(*sql.Builder), error) {
	switch {
	case g.And != nil:
		preds, err := compileChildren(g.And, cols)
		if err != nil {
			return nil, err
		}
		return sql.And(preds...), nil
	case g.Or != nil:
		preds, err := compileChildren(g.Or, cols)
		if err != nil {
			return nil, err
		}
		return sql.Or(preds...), nil
	default:
		return func(b *sql.Builder) { b.WriteString("true") }, nil
	}
}

func compileChildren(children []Filter, cols Columns) ([]func(*sql.Builder), error) {
	preds := make([]func(*sql.Builder), 0, len(children))
	for _, c := range children {
		p, err := Compile(c, cols)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func compileLeaf(leaf Leaf, cols Columns) (func(*sql.Builder), error) {
	col, ok := cols[leaf.Column]
	if !ok {
		return nil, pgapigen.NewValidationError(leaf.Column, "unknown column")
	}

	preds := make([]func(*sql.Builder), 0, len(leaf.Ops))
	for op, v := range leaf.Ops {
		p, err := compileOp(leaf.Column, col, op, v)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return sql.And(preds...), nil
}

func compileOp(name string, col catalog.Column, op Op, v any) (func(*sql.Builder), error) {
	switch op {
	case OpIs, OpIsNot:
		if v != nil {
			return nil, pgapigen.NewValidationError(name, "$is/$isNot only accept null")
		}
		if op == OpIs {
			return sql.FieldIsNull(name), nil
		}
		return sql.FieldNotNull(name), nil
	case OpEQ:
		if v == nil {
			return sql.FieldIsNull(name), nil
		}
		return sql.FieldEQ(name, v), nil
	case OpNE:
		if v == nil {
			return sql.FieldNotNull(name), nil
		}
		return sql.FieldNEQ(name, v), nil
	case OpGT, OpGTE, OpLT, OpLTE:
		if !col.Type.Comparable() {
			return nil, pgapigen.NewValidationError(name, fmt.Sprintf("%s is not valid on %s columns", op, col.Type))
		}
		switch op {
		case OpGT:
			return sql.FieldGT(name, v), nil
		case OpGTE:
			return sql.FieldGTE(name, v), nil
		case OpLT:
			return sql.FieldLT(name, v), nil
		default:
			return sql.FieldLTE(name, v), nil
		}
	case OpIn, OpNotIn:
		vs, err := toSlice(v)
		if err != nil {
			return nil, pgapigen.NewValidationError(name, err.Error())
		}
		if op == OpIn {
			return sql.FieldIn(name, vs...), nil
		}
		return sql.FieldNotIn(name, vs...), nil
	case OpLike, OpILike:
		if col.Type != catalog.TypeText {
			return nil, pgapigen.NewValidationError(name, "$like/$ilike are only valid on text columns")
		}
		pattern, ok := v.(string)
		if !ok {
			return nil, pgapigen.NewValidationError(name, "$like/$ilike require a string pattern")
		}
		if op == OpLike {
			return likePattern(name, pattern, "LIKE"), nil
		}
		return likePattern(name, pattern, "ILIKE"), nil
	default:
		return nil, pgapigen.NewValidationError(name, fmt.Sprintf("unsupported operator %q", op))
	}
}

// likePattern binds a caller-supplied LIKE/ILIKE pattern (already containing
// any % wildcards the caller wants) as a single bound parameter — this is
// distinct from FieldContains/HasPrefix/HasSuffix, which build the pattern
// themselves from a literal substring.
func likePattern(name, pattern, op string) func(*sql.Builder) {
	return func(b *sql.Builder) {
		b.Ident(name).WriteString(" " + op + " ").Arg(pattern)
	}
}

func toSlice(v any) ([]any, error) {
	vs, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("$in/$nin require an array value")
	}
	return vs, nil
}
