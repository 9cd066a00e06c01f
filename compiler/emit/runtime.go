package emit

import (
	"github.com/dave/jennifer/jen"
)

const pkgVector = "github.com/pgapigen/pgapigen/vector"

// genRuntimeFile emits runtime_gen.go: the small amount of glue every
// project's generated package needs regardless of which tables it has —
// the shared connection, JSON helpers, the composite-PK path splitter,
// and the list request body parser shared by every resource's list
// handler.
func genRuntimeFile(f *jen.File, softDeleteColumn string, includeDepth int) {
	f.Comment("dbConn is the shared connection pool every handler in this package executes against.")
	f.Var().Id("dbConn").Op("*").Qual(pkgSQL, "Driver")

	f.Comment("Connect opens dbConn against source, which should already be the resolved connection string (see config.Secret.Resolve).")
	f.Func().Id("Connect").Params(jen.Id("source").String()).Error().Block(
		jen.List(jen.Id("d"), jen.Id("err")).Op(":=").Qual(pkgSQL, "Open").Call(jen.Id("source")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Id("err"))),
		jen.Id("dbConn").Op("=").Id("d"),
		jen.Return(jen.Nil()),
	)

	f.Func().Id("writeJSON").Params(jen.Id("w").Qual("net/http", "ResponseWriter"), jen.Id("v").Any()).Block(
		jen.Id("writeJSONStatus").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"), jen.Id("v")),
	)

	f.Comment("writeJSONStatus writes v as the response body after setting status, so handlers that must report a non-200 success (201 Created) still go through one JSON-encoding path.")
	f.Func().Id("writeJSONStatus").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("status").Int(),
		jen.Id("v").Any(),
	).Block(
		jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
		jen.Id("w").Dot("WriteHeader").Call(jen.Id("status")),
		jen.Qual("encoding/json", "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(jen.Id("v")),
	)

	f.Func().Id("badRequest").Params(jen.Id("err").Error()).Error().Block(
		jen.Return(jen.Qual(pkgPgapigen, "NewValidationError").Call(jen.Lit("body"), jen.Id("err").Dot("Error").Call())),
	)

	f.Comment("splitPK turns a {pk...} wildcard path segment into the ordered key slice Resource.GetByPK/Update/Delete expect, per the composite-primary-key path convention of concatenating components with \"/\".")
	f.Func().Id("splitPK").Params(jen.Id("raw").String()).Index().Any().Block(
		jen.Id("parts").Op(":=").Qual("strings", "Split").Call(jen.Id("raw"), jen.Lit("/")),
		jen.Id("out").Op(":=").Make(jen.Index().Any(), jen.Len(jen.Id("parts"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("p")).Op(":=").Range().Id("parts")).Block(
			jen.Id("out").Index(jen.Id("i")).Op("=").Id("p"),
		),
		jen.Return(jen.Id("out")),
	)

	genListRequestBody(f)

	f.Func().Id("parseListBody").Params(
		jen.Id("raw").Index().Byte(),
		jen.Id("g").Qual(pkgGraph, "Graph"),
		jen.Id("table").String(),
	).Params(jen.Qual(pkgAPIRuntime, "ListParams"), jen.Error()).Block(
		jen.Var().Id("body").Id("listRequestBody"),
		jen.If(jen.Len(jen.Id("raw")).Op(">").Lit(0)).Block(
			jen.If(jen.Id("err").Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("raw"), jen.Op("&").Id("body")).Op(";").Id("err").Op("!=").Nil()).Block(
				jen.Return(jen.Qual(pkgAPIRuntime, "ListParams").Values(), jen.Id("badRequest").Call(jen.Id("err"))),
			),
		),
		jen.Var().Id("p").Qual(pkgAPIRuntime, "ListParams"),
		jen.Id("p").Dot("Limit").Op("=").Id("body").Dot("Limit"),
		jen.Id("p").Dot("Offset").Op("=").Id("body").Dot("Offset"),
		jen.Id("p").Dot("Select").Op("=").Id("body").Dot("Select"),
		jen.Id("p").Dot("Exclude").Op("=").Id("body").Dot("Exclude"),
		jen.List(jen.Id("cols"), jen.Id("desc"), jen.Id("err")).Op(":=").Id("parseOrder").Call(jen.Id("body").Dot("OrderBy"), jen.Id("body").Dot("Order")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Id("p"), jen.Id("err"))),
		jen.Id("p").Dot("OrderBy").Op("=").Id("cols"),
		jen.Id("p").Dot("Desc").Op("=").Id("desc"),
		jen.If(jen.Len(jen.Id("body").Dot("Where")).Op(">").Lit(0)).Block(
			jen.List(jen.Id("parsed"), jen.Id("err")).Op(":=").Qual(pkgFilter, "Parse").Call(jen.Id("body").Dot("Where"), jen.Qual(pkgFilter, "MaxGroupDepth")),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Id("p"), jen.Id("err"))),
			jen.Id("p").Dot("Where").Op("=").Id("parsed"),
		),
		jen.List(jen.Id("inc"), jen.Id("err2")).Op(":=").Id("parseIncludeBody").Call(jen.Id("body").Dot("Include"), jen.Id("g"), jen.Id("table")),
		jen.If(jen.Id("err2").Op("!=").Nil()).Block(jen.Return(jen.Id("p"), jen.Id("err2"))),
		jen.Id("p").Dot("Include").Op("=").Id("inc"),
		jen.If(jen.Id("body").Dot("Vector").Op("!=").Nil()).Block(
			jen.Id("p").Dot("Vector").Op("=").Op("&").Qual(pkgVector, "Search").Values(jen.Dict{
				jen.Id("Column"):      jen.Id("body").Dot("Vector").Dot("Field"),
				jen.Id("Query"):       jen.Id("body").Dot("Vector").Dot("Query"),
				jen.Id("Metric"):      jen.Qual(pkgVector, "Metric").Call(jen.Id("body").Dot("Vector").Dot("Metric")),
				jen.Id("MaxDistance"): jen.Id("body").Dot("Vector").Dot("MaxDistance"),
			}),
		),
		jen.Return(jen.Id("p"), jen.Nil()),
	)

	f.Comment("parseOrder resolves the orderBy/order pair per §6.4: orderBy is a column name or array of names; order is \"asc\"/\"desc\" or an array aligned positionally, and a scalar order applies to every column.")
	f.Func().Id("parseOrder").Params(
		jen.Id("orderByRaw"), jen.Id("orderRaw").Qual("encoding/json", "RawMessage"),
	).Params(jen.Index().String(), jen.Index().Bool(), jen.Error()).Block(
		jen.List(jen.Id("cols"), jen.Id("err")).Op(":=").Id("stringOrSlice").Call(jen.Id("orderByRaw")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Nil(), jen.Qual(pkgPgapigen, "NewValidationError").Call(jen.Lit("orderBy"), jen.Id("err").Dot("Error").Call()))),
		jen.If(jen.Len(jen.Id("cols")).Op("==").Lit(0)).Block(jen.Return(jen.Nil(), jen.Nil(), jen.Nil())),
		jen.List(jen.Id("orders"), jen.Id("err")).Op(":=").Id("stringOrSlice").Call(jen.Id("orderRaw")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Nil(), jen.Qual(pkgPgapigen, "NewValidationError").Call(jen.Lit("order"), jen.Id("err").Dot("Error").Call()))),
		jen.Id("desc").Op(":=").Make(jen.Index().Bool(), jen.Len(jen.Id("cols"))),
		jen.Switch(jen.Len(jen.Id("orders"))).Block(
			jen.Case(jen.Lit(1)).Block(
				jen.Id("d").Op(":=").Id("orders").Index(jen.Lit(0)).Op("==").Lit("desc"),
				jen.For(jen.Id("i").Op(":=").Range().Id("desc")).Block(jen.Id("desc").Index(jen.Id("i")).Op("=").Id("d")),
			),
			jen.Case(jen.Lit(0)).Block(),
			jen.Default().Block(
				jen.If(jen.Len(jen.Id("orders")).Op("!=").Len(jen.Id("cols"))).Block(
					jen.Return(jen.Nil(), jen.Nil(), jen.Qual(pkgPgapigen, "NewValidationError").Call(jen.Lit("order"), jen.Lit("must align with orderBy"))),
				),
				jen.For(jen.List(jen.Id("i"), jen.Id("o")).Op(":=").Range().Id("orders")).Block(
					jen.Id("desc").Index(jen.Id("i")).Op("=").Id("o").Op("==").Lit("desc"),
				),
			),
		),
		jen.Return(jen.Id("cols"), jen.Id("desc"), jen.Nil()),
	)

	f.Comment("stringOrSlice accepts either a bare JSON string or an array of strings, the shape orderBy/order/select-adjacent fields take on the wire.")
	f.Func().Id("stringOrSlice").Params(jen.Id("raw").Qual("encoding/json", "RawMessage")).Params(jen.Index().String(), jen.Error()).Block(
		jen.If(jen.Len(jen.Id("raw")).Op("==").Lit(0).Op("||").String().Call(jen.Id("raw")).Op("==").Lit("null")).Block(
			jen.Return(jen.Nil(), jen.Nil()),
		),
		jen.Var().Id("s").String(),
		jen.If(jen.Qual("encoding/json", "Unmarshal").Call(jen.Id("raw"), jen.Op("&").Id("s")).Op("==").Nil()).Block(
			jen.Return(jen.Index().String().Values(jen.Id("s")), jen.Nil()),
		),
		jen.Var().Id("ss").Index().String(),
		jen.If(jen.Qual("encoding/json", "Unmarshal").Call(jen.Id("raw"), jen.Op("&").Id("ss")).Op("==").Nil()).Block(
			jen.Return(jen.Id("ss"), jen.Nil()),
		),
		jen.Return(jen.Nil(), jen.Qual("errors", "New").Call(jen.Lit("must be a string or array of strings"))),
	)

	f.Func().Id("parseIncludeParam").Params(
		jen.Id("raw").String(),
		jen.Id("g").Qual(pkgGraph, "Graph"),
		jen.Id("table").String(),
	).Params(jen.Op("*").Qual(pkgInclude, "Spec"), jen.Error()).Block(
		jen.If(jen.Id("raw").Op("==").Lit("")).Block(jen.Return(jen.Nil(), jen.Nil())),
		jen.Return(jen.Qual(pkgInclude, "Parse").Call(jen.Index().Byte().Call(jen.Id("raw")), jen.Id("table"), jen.Id("g"), jen.Lit(includeDepth))),
	)

	f.Func().Id("parseIncludeBody").Params(
		jen.Id("raw").Qual("encoding/json", "RawMessage"),
		jen.Id("g").Qual(pkgGraph, "Graph"),
		jen.Id("table").String(),
	).Params(jen.Op("*").Qual(pkgInclude, "Spec"), jen.Error()).Block(
		jen.If(jen.Len(jen.Id("raw")).Op("==").Lit(0).Op("||").String().Call(jen.Id("raw")).Op("==").Lit("null")).Block(jen.Return(jen.Nil(), jen.Nil())),
		jen.Return(jen.Qual(pkgInclude, "Parse").Call(jen.Id("raw"), jen.Id("table"), jen.Id("g"), jen.Lit(includeDepth))),
	)
}

// genListRequestBody emits the listRequestBody/vectorRequestBody types the
// list endpoint decodes its JSON body into, per §6.1's documented shape.
func genListRequestBody(f *jen.File) {
	f.Comment("listRequestBody is the wire shape of POST /v1/{table}/list's body.")
	f.Type().Id("listRequestBody").Struct(
		jen.Id("Include").Qual("encoding/json", "RawMessage").Tag(map[string]string{"json": "include"}),
		jen.Id("Where").Qual("encoding/json", "RawMessage").Tag(map[string]string{"json": "where"}),
		jen.Id("Limit").Int().Tag(map[string]string{"json": "limit"}),
		jen.Id("Offset").Int().Tag(map[string]string{"json": "offset"}),
		jen.Id("OrderBy").Qual("encoding/json", "RawMessage").Tag(map[string]string{"json": "orderBy"}),
		jen.Id("Order").Qual("encoding/json", "RawMessage").Tag(map[string]string{"json": "order"}),
		jen.Id("Select").Index().String().Tag(map[string]string{"json": "select,omitempty"}),
		jen.Id("Exclude").Index().String().Tag(map[string]string{"json": "exclude,omitempty"}),
		jen.Id("Vector").Op("*").Id("vectorRequestBody").Tag(map[string]string{"json": "vector,omitempty"}),
	)

	f.Type().Id("vectorRequestBody").Struct(
		jen.Id("Field").String().Tag(map[string]string{"json": "field"}),
		jen.Id("Query").Index().Float64().Tag(map[string]string{"json": "query"}),
		jen.Id("Metric").String().Tag(map[string]string{"json": "metric"}),
		jen.Id("MaxDistance").Op("*").Float64().Tag(map[string]string{"json": "maxDistance,omitempty"}),
	)
}

const pkgPgapigen = "github.com/pgapigen/pgapigen"
