package emit

import (
	"github.com/dave/jennifer/jen"

	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/graph"
)

const (
	pkgCatalog = "github.com/pgapigen/pgapigen/catalog"
	pkgGraph   = "github.com/pgapigen/pgapigen/graph"
)

// genSchemaFile emits schema_gen.go: the catalog.Model and graph.Graph
// baked in at generation time as Go literals, plus the small lookup
// helpers every route file calls into. The Model literal holds the schema
// name and, per table, its name, columns, primary key and junction flag;
// foreign keys, unique indexes and enums are left out. Baking the schema in means a
// running server never re-introspects the database just to know its own
// shape; introspection only runs again the next time the generator does.
func genSchemaFile(f *jen.File, m *Model) {
	f.Comment("schemaModel is the catalog snapshot this package was generated from.")
	f.Var().Id("schemaModel").Op("=").Op("&").Qual(pkgCatalog, "Model").Values(jen.Dict{
		jen.Id("Schema"): jen.Lit(m.Schema),
		jen.Id("Tables"): jen.Index().Qual(pkgCatalog, "Table").ValuesFunc(func(g *jen.Group) {
			for _, r := range m.Resources {
				g.Add(tableLiteral(r.Table))
			}
		}),
	})

	f.Func().Id("buildRelationGraph").Params().Qual(pkgGraph, "Graph").Block(
		jen.Id("g").Op(":=").Make(jen.Qual(pkgGraph, "Graph")),
		graphBuilderStatements(m.Graph),
		jen.Return(jen.Id("g")),
	)

	f.Comment("relationGraph is the classified relation graph this package was generated from.")
	f.Var().Id("relationGraph").Op("=").Id("buildRelationGraph").Call()

	f.Func().Id("mustTable").Params(jen.Id("name").String()).Op("*").Qual(pkgCatalog, "Table").Block(
		jen.If(jen.List(jen.Id("t"), jen.Id("ok")).Op(":=").Id("schemaModel").Dot("Table").Call(jen.Id("name")).Op(";").Id("ok")).Block(
			jen.Return(jen.Id("t")),
		),
		jen.Panic(jen.Qual("fmt", "Sprintf").Call(jen.Lit("unknown table %q"), jen.Id("name"))),
	)
}

func tableLiteral(t *catalog.Table) jen.Code {
	return jen.Values(jen.Dict{
		jen.Id("Schema"): jen.Lit(t.Schema),
		jen.Id("Name"):   jen.Lit(t.Name),
		jen.Id("Columns"): jen.Index().Qual(pkgCatalog, "Column").ValuesFunc(func(g *jen.Group) {
			for _, c := range t.Columns {
				g.Add(columnLiteral(c))
			}
		}),
		jen.Id("PrimaryKey"): litStrings(t.PrimaryKey),
		jen.Id("Junction"):   jen.Lit(t.Junction),
	})
}

func columnLiteral(c catalog.Column) jen.Code {
	return jen.Values(jen.Dict{
		jen.Id("Name"):       jen.Lit(c.Name),
		jen.Id("Type"):       jen.Qual(pkgCatalog, typeConstName(c.Type)),
		jen.Id("PGType"):     jen.Lit(c.PGType),
		jen.Id("EnumName"):   jen.Lit(c.EnumName),
		jen.Id("ArrayElem"):  jen.Qual(pkgCatalog, typeConstName(c.ArrayElem)),
		jen.Id("VectorDim"):  jen.Lit(c.VectorDim),
		jen.Id("Nullable"):   jen.Lit(c.Nullable),
		jen.Id("HasDefault"): jen.Lit(c.HasDefault),
	})
}

func typeConstName(t catalog.ColumnType) string {
	switch t {
	case catalog.TypeUUID:
		return "TypeUUID"
	case catalog.TypeText:
		return "TypeText"
	case catalog.TypeInteger:
		return "TypeInteger"
	case catalog.TypeFloating:
		return "TypeFloating"
	case catalog.TypeNumeric:
		return "TypeNumeric"
	case catalog.TypeBoolean:
		return "TypeBoolean"
	case catalog.TypeTimestamp:
		return "TypeTimestamp"
	case catalog.TypeDate:
		return "TypeDate"
	case catalog.TypeJSON:
		return "TypeJSON"
	case catalog.TypeBytea:
		return "TypeBytea"
	case catalog.TypeArray:
		return "TypeArray"
	case catalog.TypeEnum:
		return "TypeEnum"
	case catalog.TypeVector:
		return "TypeVector"
	default:
		return "TypeUnknown"
	}
}

func litStrings(ss []string) jen.Code {
	vals := make([]jen.Code, len(ss))
	for i, s := range ss {
		vals[i] = jen.Lit(s)
	}
	return jen.Index().String().Values(vals...)
}

// graphBuilderStatements emits "g[source] = map[...]{...}" assignments in
// sorted source-table order so generated output is byte-stable across runs
// against the same schema.
func graphBuilderStatements(g graph.Graph) jen.Code {
	sources := make([]string, 0, len(g))
	for src := range g {
		sources = append(sources, src)
	}
	sortStrings(sources)

	stmts := make([]jen.Code, 0, len(sources))
	for _, src := range sources {
		edges := g[src]
		keys := make([]string, 0, len(edges))
		for k := range edges {
			keys = append(keys, k)
		}
		sortStrings(keys)
		stmts = append(stmts, jen.Id("g").Index(jen.Lit(src)).Op("=").Map(jen.String()).Op("*").Qual(pkgGraph, "Edge").Values(jen.DictFunc(func(d jen.Dict) {
			for _, k := range keys {
				d[jen.Lit(k)] = jen.Op("&").Qual(pkgGraph, "Edge").Values(edgeFields(edges[k]))
			}
		})))
	}
	return jen.Block(stmts...)
}

func edgeFields(e *graph.Edge) jen.Dict {
	kind := "One"
	if e.Kind == graph.Many {
		kind = "Many"
	}
	return jen.Dict{
		jen.Id("Source"):      jen.Lit(e.Source),
		jen.Id("Target"):      jen.Lit(e.Target),
		jen.Id("Kind"):        jen.Qual(pkgGraph, kind),
		jen.Id("FromColumns"): litStrings(e.FromColumns),
		jen.Id("ToColumns"):   litStrings(e.ToColumns),
		jen.Id("Junction"):    jen.Lit(e.Junction),
		jen.Id("JunctionFrom"): litStrings(e.JunctionFrom),
		jen.Id("JunctionTo"):   litStrings(e.JunctionTo),
	}
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
