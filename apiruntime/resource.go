package apiruntime

import (
	"context"
	"sort"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/dialect/sql"
	"github.com/pgapigen/pgapigen/dialect/sql/sqlgraph"
	"github.com/pgapigen/pgapigen/filter"
	"github.com/pgapigen/pgapigen/graph"
	"github.com/pgapigen/pgapigen/include"
	"github.com/pgapigen/pgapigen/vector"
)

// Resource is the runtime counterpart of emit.Resource: the per-table
// metadata a generated route file hands to this package instead of
// embedding the query-building logic itself. One Resource is constructed
// per table at server startup and reused across requests.
type Resource struct {
	Schema     string
	Table      *catalog.Table
	Columns    filter.Columns
	Graph      graph.Graph
	Catalog    *catalog.Model
	MaxInclude int
}

// ListParams is the parsed form of a list request body.
type ListParams struct {
	Limit   int
	Offset  int
	OrderBy []string
	Desc    []bool
	Where   filter.Filter
	Include *include.Spec
	Select  []string
	Exclude []string
	Vector  *vector.Search
}

const defaultLimit = 50
const maxLimit = 100

// List runs a filtered, paginated, optionally-included SELECT and returns
// the matching rows plus the total count ignoring limit/offset. When
// p.Vector is set, rows are ordered by distance to the query vector
// instead of (or in addition to) p.OrderBy, and a threshold predicate is
// ANDed into the WHERE clause alongside the compiled filter.
func (r *Resource) List(ctx context.Context, conn *sql.Driver, p ListParams) ([]sqlgraph.Row, int, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	where, err := filter.Compile(p.Where, r.Columns)
	if err != nil {
		return nil, 0, err
	}
	if p.Vector != nil {
		if err := p.Vector.Validate(); err != nil {
			return nil, 0, err
		}
		if _, ok := r.Columns[p.Vector.Column]; !ok {
			return nil, 0, pgapigen.NewValidationError("vector", "unknown column "+p.Vector.Column)
		}
		if threshold := p.Vector.ThresholdPredicate(); threshold != nil {
			compiled := where
			where = func(b *sql.Builder) { sql.And(compiled, threshold)(b) }
		}
	}
	selectCols, err := projectedColumns(r.Columns, p.Select, p.Exclude)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.count(ctx, conn, where)
	if err != nil {
		return nil, 0, err
	}

	q := sql.Build(func(b *sql.Builder) {
		b.WriteString("SELECT ")
		writeProjection(b, selectCols, p.Vector)
		b.WriteString(" FROM ")
		b.Table(r.Schema, r.Table.Name)
		b.WriteString(" WHERE ")
		where(b)
		switch {
		case p.Vector != nil:
			b.WriteString(" ORDER BY ")
			if err := p.Vector.DistanceExpr(b); err != nil {
				return
			}
			if len(p.OrderBy) > 0 {
				b.WriteString(", ")
				b.Join(", ", orderClauses(p.OrderBy, p.Desc))
			}
		case len(p.OrderBy) > 0:
			b.WriteString(" ORDER BY ")
			b.Join(", ", orderClauses(p.OrderBy, p.Desc))
		}
		b.WriteString(" LIMIT ").Arg(limit).WriteString(" OFFSET ").Arg(p.Offset)
	})
	rows, err := sqlgraph.QueryRows(ctx, conn, q)
	if err != nil {
		return nil, 0, pgapigen.NewDatabaseError("list "+r.Table.Name, err)
	}
	if p.Include != nil {
		if err := r.hydrate(ctx, conn, rows, p.Include); err != nil {
			return nil, 0, err
		}
	}
	return rows, total, nil
}

// projectedColumns resolves select/exclude (mutually exclusive, per §6.1)
// against cols, validating every named column exists. A nil return with a
// nil error means "all columns" (SELECT *).
func projectedColumns(cols filter.Columns, sel, exclude []string) ([]string, error) {
	if len(sel) > 0 && len(exclude) > 0 {
		return nil, pgapigen.NewValidationError("select", "select and exclude are mutually exclusive")
	}
	if len(sel) > 0 {
		for _, c := range sel {
			if _, ok := cols[c]; !ok {
				return nil, pgapigen.NewValidationError("select", "unknown column "+c)
			}
		}
		return sel, nil
	}
	if len(exclude) > 0 {
		excluded := make(map[string]bool, len(exclude))
		for _, c := range exclude {
			if _, ok := cols[c]; !ok {
				return nil, pgapigen.NewValidationError("exclude", "unknown column "+c)
			}
			excluded[c] = true
		}
		names := make([]string, 0, len(cols))
		for c := range cols {
			if !excluded[c] {
				names = append(names, c)
			}
		}
		sort.Strings(names)
		return names, nil
	}
	return nil, nil
}

// writeProjection writes the column list for a list query: "*" when names
// is nil, else the explicit list, plus, when a vector search is active,
// the aliased distance expression so callers can see the score that
// produced the ordering.
func writeProjection(b *sql.Builder, names []string, v *vector.Search) {
	if len(names) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	if v != nil {
		b.WriteString(", ")
		if err := v.DistanceExpr(b); err != nil {
			return
		}
		b.WriteString(" AS _distance")
	}
}

func (r *Resource) count(ctx context.Context, conn *sql.Driver, where func(*sql.Builder)) (int, error) {
	q := sql.Build(func(b *sql.Builder) {
		b.WriteString("SELECT COUNT(*) FROM ")
		b.Table(r.Schema, r.Table.Name)
		b.WriteString(" WHERE ")
		where(b)
	})
	rows, err := sqlgraph.QueryRows(ctx, conn, q)
	if err != nil {
		return 0, pgapigen.NewDatabaseError("count "+r.Table.Name, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, v := range rows[0] {
		if n, ok := toInt(v); ok {
			return n, nil
		}
	}
	return 0, nil
}

// GetByPK fetches a single row by its primary key, returning
// *pgapigen.NotFoundError when it does not exist.
func (r *Resource) GetByPK(ctx context.Context, conn *sql.Driver, pk []any, inc *include.Spec) (sqlgraph.Row, error) {
	if len(pk) != len(r.Table.PrimaryKey) {
		return nil, pgapigen.NewNotFoundError(r.Table.Name, pk)
	}
	q := sql.Build(func(b *sql.Builder) {
		b.WriteString("SELECT * FROM ")
		b.Table(r.Schema, r.Table.Name)
		b.WriteString(" WHERE ")
		for i, col := range r.Table.PrimaryKey {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.Ident(col).WriteString(" = ").Arg(pk[i])
		}
	})
	rows, err := sqlgraph.QueryRows(ctx, conn, q)
	if err != nil {
		return nil, pgapigen.NewDatabaseError("get "+r.Table.Name, err)
	}
	if len(rows) == 0 {
		return nil, pgapigen.NewNotFoundError(r.Table.Name, pk)
	}
	row := rows[0]
	if inc != nil {
		if err := r.hydrate(ctx, conn, rows, inc); err != nil {
			return nil, err
		}
	}
	return row, nil
}

// Create inserts a new row and returns it re-read with defaults applied.
func (r *Resource) Create(ctx context.Context, conn *sql.Driver, values map[string]any) (sqlgraph.Row, error) {
	cols := sortedKeys(values)
	q := sql.Build(func(b *sql.Builder) {
		b.WriteString("INSERT INTO ")
		b.Table(r.Schema, r.Table.Name)
		b.WriteByte('(')
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
		b.WriteString(") VALUES (")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Arg(values[c])
		}
		b.WriteString(") RETURNING *")
	})
	rows, err := sqlgraph.QueryRows(ctx, conn, q)
	if err != nil {
		return nil, pgapigen.NewDatabaseError("create "+r.Table.Name, err)
	}
	return rows[0], nil
}

// Update applies a partial update to the row identified by pk. Primary-key
// columns in values are stripped before the SET clause is built, per
// §6.1's "primary-key columns stripped from the patch"; if nothing remains
// afterward, it returns a ValidationError rather than issuing a
// malformed empty-SET statement.
func (r *Resource) Update(ctx context.Context, conn *sql.Driver, pk []any, values map[string]any) (sqlgraph.Row, error) {
	if len(pk) != len(r.Table.PrimaryKey) {
		return nil, pgapigen.NewNotFoundError(r.Table.Name, pk)
	}
	patch := stripPrimaryKey(values, r.Table.PrimaryKey)
	if len(patch) == 0 {
		return nil, pgapigen.NewValidationError("body", "no updatable fields remain after stripping primary-key columns")
	}
	cols := sortedKeys(patch)
	q := sql.Build(func(b *sql.Builder) {
		b.WriteString("UPDATE ")
		b.Table(r.Schema, r.Table.Name)
		b.WriteString(" SET ")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c).WriteString(" = ").Arg(patch[c])
		}
		b.WriteString(" WHERE ")
		for i, col := range r.Table.PrimaryKey {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.Ident(col).WriteString(" = ").Arg(pk[i])
		}
		b.WriteString(" RETURNING *")
	})
	rows, err := sqlgraph.QueryRows(ctx, conn, q)
	if err != nil {
		return nil, pgapigen.NewDatabaseError("update "+r.Table.Name, err)
	}
	if len(rows) == 0 {
		return nil, pgapigen.NewNotFoundError(r.Table.Name, pk)
	}
	return rows[0], nil
}

// Delete removes (or soft-deletes, when softDeleteColumn is non-empty) the
// row identified by pk, returning the deleted (or soft-deleted) row, or
// *pgapigen.NotFoundError when pk does not match any row.
func (r *Resource) Delete(ctx context.Context, conn *sql.Driver, pk []any, softDeleteColumn string) (sqlgraph.Row, error) {
	if len(pk) != len(r.Table.PrimaryKey) {
		return nil, pgapigen.NewNotFoundError(r.Table.Name, pk)
	}
	q := sql.Build(func(b *sql.Builder) {
		if softDeleteColumn != "" {
			b.WriteString("UPDATE ")
			b.Table(r.Schema, r.Table.Name)
			b.WriteString(" SET ").Ident(softDeleteColumn).WriteString(" = now()")
		} else {
			b.WriteString("DELETE FROM ")
			b.Table(r.Schema, r.Table.Name)
		}
		b.WriteString(" WHERE ")
		for i, col := range r.Table.PrimaryKey {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.Ident(col).WriteString(" = ").Arg(pk[i])
		}
		b.WriteString(" RETURNING *")
	})
	rows, err := sqlgraph.QueryRows(ctx, conn, q)
	if err != nil {
		return nil, pgapigen.NewDatabaseError("delete "+r.Table.Name, err)
	}
	if len(rows) == 0 {
		return nil, pgapigen.NewNotFoundError(r.Table.Name, pk)
	}
	return rows[0], nil
}

// stripPrimaryKey returns a copy of values with every primary-key column
// removed, leaving values itself untouched.
func stripPrimaryKey(values map[string]any, pk []string) map[string]any {
	strip := make(map[string]bool, len(pk))
	for _, c := range pk {
		strip[c] = true
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if !strip[k] {
			out[k] = v
		}
	}
	return out
}

func (r *Resource) hydrate(ctx context.Context, conn *sql.Driver, rows []sqlgraph.Row, inc *include.Spec) error {
	plan := buildPlan(r.Table.Name, r.Catalog, r.Graph, inc, r.MaxInclude)
	if plan == nil {
		return nil
	}
	loaded, err := sqlgraph.Load(ctx, conn, rows, plan, nil)
	if err != nil {
		return err
	}
	for i, row := range loaded {
		for k, v := range row {
			rows[i][k] = v
		}
	}
	return nil
}

// buildPlan translates an include.Spec into a sqlgraph.Plan by resolving
// each requested relation key against the Graph and, for many-to-many
// edges, the target table's primary key from the catalog.
func buildPlan(table string, model *catalog.Model, g graph.Graph, inc *include.Spec, maxDepth int) *sqlgraph.Plan {
	if maxDepth <= 0 || len(inc.Relations) == 0 {
		return nil
	}
	plan := &sqlgraph.Plan{Edges: map[string]sqlgraph.Edge{}}
	for key, opts := range inc.Relations {
		edge, ok := g[table][key]
		if !ok {
			continue
		}
		var spec sqlgraph.EdgeSpec
		switch {
		case edge.Junction != "":
			// FromColumns are read off each parent row (Source's own PK);
			// ToColumns are the junction's FK pointing back at Source,
			// matched against those values; JunctionToTarget is the
			// junction's other FK, pointing at Target's PK (TargetPK).
			spec = sqlgraph.EdgeSpec{
				Rel:              sqlgraph.ManyToMany,
				Table:            edge.Junction,
				TargetTable:      edge.Target,
				FromColumns:      edge.FromColumns,
				ToColumns:        edge.JunctionFrom,
				JunctionToTarget: edge.JunctionTo,
				TargetPK:         targetPK(model, edge.Target),
			}
		case edge.Kind == graph.One:
			spec = sqlgraph.EdgeSpec{Rel: sqlgraph.BelongsTo, Table: edge.Target, FromColumns: edge.FromColumns, ToColumns: edge.ToColumns}
		default:
			spec = sqlgraph.EdgeSpec{Rel: sqlgraph.HasMany, Table: edge.Target, FromColumns: edge.FromColumns, ToColumns: edge.ToColumns}
		}
		if opts.Limit != nil {
			spec.Limit = *opts.Limit
		}
		if opts.Offset != nil {
			spec.Offset = *opts.Offset
		}
		spec.OrderBy = opts.OrderBy
		e := sqlgraph.Edge{Spec: spec}
		if opts.Include != nil {
			e.Nested = buildPlan(edge.Target, model, g, opts.Include, maxDepth-1)
		}
		plan.Edges[key] = e
	}
	return plan
}

func targetPK(model *catalog.Model, table string) []string {
	if t, ok := model.Table(table); ok {
		return t.PrimaryKey
	}
	return nil
}

func orderClauses(cols []string, desc []bool) []func(*sql.Builder) {
	out := make([]func(*sql.Builder), len(cols))
	for i, c := range cols {
		c := c
		d := i < len(desc) && desc[i]
		out[i] = func(b *sql.Builder) {
			b.Ident(c)
			if d {
				b.WriteString(" DESC")
			}
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
