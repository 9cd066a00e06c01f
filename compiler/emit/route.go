package emit

import (
	"github.com/dave/jennifer/jen"
)

const (
	pkgAPIRuntime = "github.com/pgapigen/pgapigen/apiruntime"
	pkgInclude    = "github.com/pgapigen/pgapigen/include"
	pkgFilter     = "github.com/pgapigen/pgapigen/filter"
	pkgSQL        = "github.com/pgapigen/pgapigen/dialect/sql"
	pkgSQLGraph   = "github.com/pgapigen/pgapigen/dialect/sql/sqlgraph"
)

// genRoutes emits the resource's route file: a Mount function that
// registers list/get/create/update/delete handlers on a *http.ServeMux
// under the /v1 prefix, each handler parsing its own request shape and
// delegating the actual query building to apiruntime.Resource so the
// generated file stays a thin, readable wiring layer rather than a
// second copy of the loader.
func genRoutes(f *jen.File, r *Resource, schema string, softDeleteColumn string, maxIncludeDepth int) {
	resourceVar := "resource" + r.TypeName
	base := "/v1/" + r.RouteName

	f.Commentf("%s is the runtime metadata for the %q table, shared by every handler below.", resourceVar, r.Table.Name)
	f.Var().Id(resourceVar).Op("=").Op("&").Qual(pkgAPIRuntime, "Resource").Values(jen.Dict{
		jen.Id("Schema"):     jen.Lit(schema),
		jen.Id("Table"):      jen.Id("mustTable").Call(jen.Lit(r.Table.Name)),
		jen.Id("Columns"):    jen.Qual(pkgFilter, "ColumnsOf").Call(jen.Id("mustTable").Call(jen.Lit(r.Table.Name))),
		jen.Id("Graph"):      jen.Id("relationGraph"),
		jen.Id("Catalog"):    jen.Id("schemaModel"),
		jen.Id("MaxInclude"): jen.Lit(maxIncludeDepth),
	})

	f.Commentf("Mount%s registers the %s resource's routes on mux.", r.TypeName, r.TypeName)
	f.Func().Id("Mount"+r.TypeName).Params(jen.Id("mux").Op("*").Qual("net/http", "ServeMux")).Block(
		jen.Id("mux").Dot("HandleFunc").Call(jen.Lit("POST "+base), jen.Id("create"+r.TypeName)),
		jen.Id("mux").Dot("HandleFunc").Call(jen.Lit("GET "+base+"/{pk...}"), jen.Id("get"+r.TypeName)),
		jen.Id("mux").Dot("HandleFunc").Call(jen.Lit("POST "+base+"/list"), jen.Id("list"+r.TypeName)),
		jen.Id("mux").Dot("HandleFunc").Call(jen.Lit("PATCH "+base+"/{pk...}"), jen.Id("update"+r.TypeName)),
		jen.Id("mux").Dot("HandleFunc").Call(jen.Lit("DELETE "+base+"/{pk...}"), jen.Id("delete"+r.TypeName)),
	)

	genListHandler(f, r)
	genGetHandler(f, r)
	genCreateHandler(f, r)
	genUpdateHandler(f, r)
	genDeleteHandler(f, r, softDeleteColumn)
}

func genListHandler(f *jen.File, r *Resource) {
	f.Func().Id("list"+r.TypeName).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("req").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.List(jen.Id("raw"), jen.Id("readErr")).Op(":=").Qual("io", "ReadAll").Call(jen.Id("req").Dot("Body")),
		jen.If(jen.Id("readErr").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("badRequest").Call(jen.Id("readErr"))),
			jen.Return(),
		),
		jen.List(jen.Id("params"), jen.Id("err")).Op(":=").Id("parseListBody").Call(jen.Id("raw"), jen.Id("resource"+r.TypeName).Dot("Graph"), jen.Lit(r.Table.Name)),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.List(jen.Id("rows"), jen.Id("total"), jen.Id("err")).Op(":=").Id("resource"+r.TypeName).Dot("List").Call(jen.Id("req").Dot("Context").Call(), jen.Id("dbConn"), jen.Id("params")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.Id("page").Op(":=").Qual(pkgAPIRuntime, "NewPage").Index(jen.Qual(pkgSQLGraph, "Row")).Call(jen.Id("rows"), jen.Id("total"), jen.Id("params").Dot("Limit"), jen.Id("params").Dot("Offset")),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Id("page")),
	)
}

func genGetHandler(f *jen.File, r *Resource) {
	f.Func().Id("get"+r.TypeName).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("req").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.Id("pk").Op(":=").Id("splitPK").Call(jen.Id("req").Dot("PathValue").Call(jen.Lit("pk"))),
		jen.List(jen.Id("inc"), jen.Id("err")).Op(":=").Id("parseIncludeParam").Call(jen.Id("req").Dot("URL").Dot("Query").Call().Dot("Get").Call(jen.Lit("include")), jen.Id("resource"+r.TypeName).Dot("Graph"), jen.Lit(r.Table.Name)),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.List(jen.Id("row"), jen.Id("err")).Op(":=").Id("resource"+r.TypeName).Dot("GetByPK").Call(jen.Id("req").Dot("Context").Call(), jen.Id("dbConn"), jen.Id("pk"), jen.Id("inc")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Id("row")),
	)
}

func genCreateHandler(f *jen.File, r *Resource) {
	f.Func().Id("create"+r.TypeName).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("req").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.Var().Id("body").Map(jen.String()).Any(),
		jen.If(jen.Id("err").Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("req").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("body")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("badRequest").Call(jen.Id("err"))),
			jen.Return(),
		),
		jen.If(jen.Id("err").Op(":=").Id("Validate"+r.TypeName+"Insert").Call(jen.Id("body")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.List(jen.Id("row"), jen.Id("err")).Op(":=").Id("resource"+r.TypeName).Dot("Create").Call(jen.Id("req").Dot("Context").Call(), jen.Id("dbConn"), jen.Id("body")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.Id("writeJSONStatus").Call(jen.Id("w"), jen.Qual("net/http", "StatusCreated"), jen.Id("row")),
	)
}

func genUpdateHandler(f *jen.File, r *Resource) {
	f.Func().Id("update"+r.TypeName).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("req").Op("*").Qual("net/http", "Request"),
	).Block(
		jen.Id("pk").Op(":=").Id("splitPK").Call(jen.Id("req").Dot("PathValue").Call(jen.Lit("pk"))),
		jen.Var().Id("body").Map(jen.String()).Any(),
		jen.If(jen.Id("err").Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("req").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("body")).Op(";").Id("err").Op("!=").Nil().Op("&&").Id("err").Op("!=").Qual("io", "EOF")).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("badRequest").Call(jen.Id("err"))),
			jen.Return(),
		),
		jen.If(jen.Id("err").Op(":=").Id("Validate"+r.TypeName+"Update").Call(jen.Id("body")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.List(jen.Id("row"), jen.Id("err")).Op(":=").Id("resource"+r.TypeName).Dot("Update").Call(jen.Id("req").Dot("Context").Call(), jen.Id("dbConn"), jen.Id("pk"), jen.Id("body")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Id("row")),
	)
}

func genDeleteHandler(f *jen.File, r *Resource, softDeleteColumn string) {
	f.Func().Id("delete"+r.TypeName).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("req").Op("*").Qual("net/http", "Request"),
	).BlockFunc(func(g *jen.Group) {
		g.Id("pk").Op(":=").Id("splitPK").Call(jen.Id("req").Dot("PathValue").Call(jen.Lit("pk")))
		g.List(jen.Id("row"), jen.Id("err")).Op(":=").Id("resource"+r.TypeName).Dot("Delete").Call(jen.Id("req").Dot("Context").Call(), jen.Id("dbConn"), jen.Id("pk"), jen.Lit(softDeleteColumn))
		g.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Qual(pkgAPIRuntime, "WriteError").Call(jen.Id("w"), jen.Id("err")),
			jen.Return(),
		)
		if softDeleteColumn != "" {
			g.Id("writeJSON").Call(jen.Id("w"), jen.Id("row"))
		} else {
			g.Id("w").Dot("WriteHeader").Call(jen.Qual("net/http", "StatusNoContent"))
		}
	})
}
