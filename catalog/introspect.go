package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pgapigen/pgapigen"
)

// Introspector reads the PostgreSQL system catalog and produces a Model.
// It is the only component in this module that issues queries against
// pg_catalog/information_schema rather than user tables.
type Introspector struct {
	db *sql.DB
}

// NewIntrospector wraps an already-opened database handle. The handle must
// have been opened through the "pgx" driver (see dialect/sql.Open).
func NewIntrospector(db *sql.DB) *Introspector {
	return &Introspector{db: db}
}

// Introspect queries schema for every base table it contains and returns a
// fully-populated Model, or a fatal IntrospectionError. Catalog queries run
// concurrently; the final Model's table order never depends on which query
// finished first — each result set is sorted before being merged.
func (in *Introspector) Introspect(ctx context.Context, schema string) (*Model, error) {
	if schema == "" {
		schema = "public"
	}
	if err := in.checkSchema(ctx, schema); err != nil {
		return nil, err
	}

	tableNames, err := in.tableNames(ctx, schema)
	if err != nil {
		return nil, pgapigen.NewIntrospectionError("list tables", schema, err)
	}

	var (
		columns  map[string][]Column
		pks      map[string][]string
		uniques  map[string][]Index
		fks      map[string][]ForeignKey
		enums    []Enum
		enumsErr error
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		columns, err = in.columns(gctx, schema)
		return err
	})
	eg.Go(func() error {
		var err error
		pks, err = in.primaryKeys(gctx, schema)
		return err
	})
	eg.Go(func() error {
		var err error
		uniques, err = in.uniqueIndexes(gctx, schema)
		return err
	})
	eg.Go(func() error {
		var err error
		fks, err = in.foreignKeys(gctx, schema)
		return err
	})
	eg.Go(func() error {
		enums, enumsErr = in.enums(gctx, schema)
		return enumsErr
	})
	if err := eg.Wait(); err != nil {
		return nil, pgapigen.NewIntrospectionError("query catalog", schema, err)
	}

	model := &Model{Schema: schema, Enums: enums}
	for _, name := range tableNames {
		model.Tables = append(model.Tables, Table{
			Schema:      schema,
			Name:        name,
			Columns:     columns[name],
			PrimaryKey:  pks[name],
			Unique:      uniques[name],
			ForeignKeys: fks[name],
		})
	}
	sort.Slice(model.Tables, func(i, j int) bool { return model.Tables[i].Name < model.Tables[j].Name })
	sort.Slice(model.Enums, func(i, j int) bool { return model.Enums[i].Name < model.Enums[j].Name })

	if err := validateModel(model); err != nil {
		return nil, err
	}
	return model, nil
}

func (in *Introspector) checkSchema(ctx context.Context, schema string) error {
	var exists bool
	const q = `SELECT EXISTS(SELECT 1 FROM pg_catalog.pg_namespace WHERE nspname = $1)`
	if err := in.db.QueryRowContext(ctx, q, schema).Scan(&exists); err != nil {
		return pgapigen.NewIntrospectionError("check schema", schema, err)
	}
	if !exists {
		return pgapigen.NewIntrospectionError("unknown schema", schema, fmt.Errorf("schema %q does not exist", schema))
	}
	return nil
}

func (in *Introspector) tableNames(ctx context.Context, schema string) ([]string, error) {
	const q = `
SELECT c.relname
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
ORDER BY c.relname`
	rows, err := in.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

var vectorTypeRe = regexp.MustCompile(`^vector\((\d+)\)$`)

func (in *Introspector) columns(ctx context.Context, schema string) (map[string][]Column, error) {
	const q = `
SELECT
	c.relname,
	a.attname,
	pg_catalog.format_type(a.atttypid, a.atttypmod) AS typ,
	NOT a.attnotnull AS nullable,
	ad.adbin IS NOT NULL AS has_default,
	t.typname,
	t.typtype,
	et.typname AS elem_typname
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid AND a.attnum > 0 AND NOT a.attisdropped
JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
LEFT JOIN pg_catalog.pg_type et ON et.oid = t.typelem AND t.typelem != 0
LEFT JOIN pg_catalog.pg_attrdef ad ON ad.adrelid = c.oid AND ad.adnum = a.attnum
WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
ORDER BY c.relname, a.attnum`
	rows, err := in.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Column)
	for rows.Next() {
		var (
			table, name, pgType, typname string
			elemTypname                  sql.NullString
			typtype                      string
			nullable, hasDefault         bool
		)
		if err := rows.Scan(&table, &name, &pgType, &nullable, &hasDefault, &typname, &typtype, &elemTypname); err != nil {
			return nil, err
		}
		col := Column{Name: name, PGType: pgType, Nullable: nullable, HasDefault: hasDefault}
		classifyColumn(&col, pgType, typname, typtype, elemTypname.String)
		out[table] = append(out[table], col)
	}
	return out, rows.Err()
}

// classifyColumn maps a raw Postgres type to the semantic ColumnType used
// throughout the rest of the pipeline.
func classifyColumn(col *Column, pgType, typname, typtype, elemTypname string) {
	if m := vectorTypeRe.FindStringSubmatch(pgType); m != nil {
		col.Type = TypeVector
		col.VectorDim, _ = strconv.Atoi(m[1])
		return
	}
	if typtype == "e" {
		col.Type = TypeEnum
		col.EnumName = typname
		return
	}
	if strings.HasPrefix(pgType, "ARRAY") || strings.HasSuffix(pgType, "[]") {
		col.Type = TypeArray
		col.ArrayElem = pgBaseType(elemTypname)
		return
	}
	col.Type = pgBaseType(typname)
}

func pgBaseType(typname string) ColumnType {
	switch typname {
	case "uuid":
		return TypeUUID
	case "text", "varchar", "bpchar", "char", "citext":
		return TypeText
	case "int2", "int4", "int8", "serial", "bigserial":
		return TypeInteger
	case "float4", "float8":
		return TypeFloating
	case "numeric", "money":
		return TypeNumeric
	case "bool":
		return TypeBoolean
	case "timestamp", "timestamptz":
		return TypeTimestamp
	case "date":
		return TypeDate
	case "json", "jsonb":
		return TypeJSON
	case "bytea":
		return TypeBytea
	default:
		return TypeText
	}
}

func (in *Introspector) primaryKeys(ctx context.Context, schema string) (map[string][]string, error) {
	const q = `
SELECT c.relname, a.attname
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_index i ON i.indrelid = c.oid AND i.indisprimary
JOIN unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum
WHERE n.nspname = $1
ORDER BY c.relname, k.ord`
	rows, err := in.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]string)
	for rows.Next() {
		var table, col string
		if err := rows.Scan(&table, &col); err != nil {
			return nil, err
		}
		out[table] = append(out[table], col)
	}
	return out, rows.Err()
}

func (in *Introspector) uniqueIndexes(ctx context.Context, schema string) (map[string][]Index, error) {
	const q = `
SELECT c.relname, ci.relname, i.indisprimary,
	(SELECT array_agg(a.attname ORDER BY k.ord)
	 FROM unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord)
	 JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum)
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_index i ON i.indrelid = c.oid AND i.indisunique
JOIN pg_catalog.pg_class ci ON ci.oid = i.indexrelid
WHERE n.nspname = $1
ORDER BY c.relname, ci.relname`
	rows, err := in.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]Index)
	for rows.Next() {
		var table, idxName string
		var isPrimary bool
		var cols stringArray
		if err := rows.Scan(&table, &idxName, &isPrimary, &cols); err != nil {
			return nil, err
		}
		out[table] = append(out[table], Index{Name: idxName, Columns: cols, IsPrimary: isPrimary})
	}
	return out, rows.Err()
}

func (in *Introspector) foreignKeys(ctx context.Context, schema string) (map[string][]ForeignKey, error) {
	const q = `
SELECT
	ct.relname AS src_table,
	con.conname,
	(SELECT array_agg(a.attname ORDER BY k.ord)
	 FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
	 JOIN pg_catalog.pg_attribute a ON a.attrelid = ct.oid AND a.attnum = k.attnum) AS src_cols,
	rt.relname AS dst_table,
	(SELECT array_agg(a.attname ORDER BY k.ord)
	 FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
	 JOIN pg_catalog.pg_attribute a ON a.attrelid = rt.oid AND a.attnum = k.attnum) AS dst_cols,
	con.confupdtype,
	con.confdeltype
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class ct ON ct.oid = con.conrelid
JOIN pg_catalog.pg_namespace sn ON sn.oid = ct.relnamespace
JOIN pg_catalog.pg_class rt ON rt.oid = con.confrelid
WHERE sn.nspname = $1 AND con.contype = 'f'
ORDER BY ct.relname, con.conname`
	rows, err := in.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]ForeignKey)
	for rows.Next() {
		var (
			srcTable, name, dstTable string
			srcCols, dstCols         stringArray
			onUpdate, onDelete       string
		)
		if err := rows.Scan(&srcTable, &name, &srcCols, &dstTable, &dstCols, &onUpdate, &onDelete); err != nil {
			return nil, err
		}
		out[srcTable] = append(out[srcTable], ForeignKey{
			Name:     name,
			From:     srcCols,
			ToTable:  dstTable,
			To:       dstCols,
			OnUpdate: actionFromChar(onUpdate),
			OnDelete: actionFromChar(onDelete),
		})
	}
	return out, rows.Err()
}

func actionFromChar(c string) ForeignKeyAction {
	switch c {
	case "c":
		return ActionCascade
	case "n":
		return ActionSetNull
	case "d":
		return ActionSetDefault
	case "r":
		return ActionRestrict
	default:
		return ActionNoAction
	}
}

func (in *Introspector) enums(ctx context.Context, schema string) ([]Enum, error) {
	const q = `
SELECT t.typname, e.enumlabel
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid
WHERE n.nspname = $1
ORDER BY t.typname, e.enumsortorder`
	rows, err := in.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byName := make(map[string]*Enum)
	var order []string
	for rows.Next() {
		var name, label string
		if err := rows.Scan(&name, &label); err != nil {
			return nil, err
		}
		e, ok := byName[name]
		if !ok {
			e = &Enum{Schema: schema, Name: name}
			byName[name] = e
			order = append(order, name)
		}
		e.Labels = append(e.Labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	enums := make([]Enum, 0, len(order))
	for _, name := range order {
		enums = append(enums, *byName[name])
	}
	return enums, nil
}

// validateModel enforces the §3 Model invariants before Introspect returns.
func validateModel(m *Model) error {
	for _, t := range m.Tables {
		for _, fk := range t.ForeignKeys {
			if len(fk.From) != len(fk.To) {
				return pgapigen.NewClassificationError(t.Name, fmt.Sprintf("foreign key %s: %d source columns vs %d target columns", fk.Name, len(fk.From), len(fk.To)), nil)
			}
		}
		for _, col := range t.PrimaryKey {
			if !t.HasColumn(col) {
				return pgapigen.NewClassificationError(t.Name, fmt.Sprintf("primary key references unknown column %q", col), nil)
			}
		}
		for _, ix := range t.Unique {
			for _, col := range ix.Columns {
				if !t.HasColumn(col) {
					return pgapigen.NewClassificationError(t.Name, fmt.Sprintf("unique index %s references unknown column %q", ix.Name, col), nil)
				}
			}
		}
	}
	return nil
}
