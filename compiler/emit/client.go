package emit

import (
	"github.com/dave/jennifer/jen"
)

const pkgBytes = "bytes"

// genClientCore emits the shared Client type every per-resource client
// wraps: base URL, *http.Client, and the do helper that marshals a
// request body, issues it, and decodes a JSON response or surfaces a
// non-2xx status as an error. No third-party HTTP client library turned
// up anywhere in the retrieved corpus, so this talks to net/http
// directly rather than inventing a dependency that was never grounded.
func genClientCore(f *jen.File) {
	f.Comment("Client is the shared transport every resource client in this SDK is built on.")
	f.Type().Id("Client").Struct(
		jen.Id("BaseURL").String(),
		jen.Id("HTTP").Op("*").Qual("net/http", "Client"),
	)

	f.Comment("NewClient builds a Client against baseURL, defaulting to http.DefaultClient when hc is nil.")
	f.Func().Id("NewClient").Params(jen.Id("baseURL").String(), jen.Id("hc").Op("*").Qual("net/http", "Client")).Op("*").Id("Client").Block(
		jen.If(jen.Id("hc").Op("==").Nil()).Block(jen.Id("hc").Op("=").Qual("net/http", "DefaultClient")),
		jen.Return(jen.Op("&").Id("Client").Values(jen.Dict{
			jen.Id("BaseURL"): jen.Id("baseURL"),
			jen.Id("HTTP"):    jen.Id("hc"),
		})),
	)

	f.Comment("do issues method against path, encoding body (if non-nil) as the request body and decoding the response into out (if non-nil). A non-2xx response is returned as an error carrying the response body text.")
	f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id("do").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("method"), jen.Id("path").String(),
		jen.Id("body"), jen.Id("out").Any(),
	).Error().Block(
		jen.Var().Id("reqBody").Qual("io", "Reader"),
		jen.If(jen.Id("body").Op("!=").Nil()).Block(
			jen.List(jen.Id("b"), jen.Id("err")).Op(":=").Qual("encoding/json", "Marshal").Call(jen.Id("body")),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Id("err"))),
			jen.Id("reqBody").Op("=").Qual(pkgBytes, "NewReader").Call(jen.Id("b")),
		),
		jen.List(jen.Id("req"), jen.Id("err")).Op(":=").Qual("net/http", "NewRequestWithContext").Call(jen.Id("ctx"), jen.Id("method"), jen.Id("c").Dot("BaseURL").Op("+").Id("path"), jen.Id("reqBody")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Id("err"))),
		jen.If(jen.Id("body").Op("!=").Nil()).Block(
			jen.Id("req").Dot("Header").Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
		),
		jen.List(jen.Id("resp"), jen.Id("err")).Op(":=").Id("c").Dot("HTTP").Dot("Do").Call(jen.Id("req")),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(jen.Return(jen.Id("err"))),
		jen.Defer().Id("resp").Dot("Body").Dot("Close").Call(),
		jen.If(jen.Id("resp").Dot("StatusCode").Op(">=").Lit(400)).Block(
			jen.List(jen.Id("msg"), jen.Id("_")).Op(":=").Qual("io", "ReadAll").Call(jen.Id("resp").Dot("Body")),
			jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("%s %s: %s: %s"), jen.Id("method"), jen.Id("path"), jen.Id("resp").Dot("Status"), jen.Id("msg"))),
		),
		jen.If(jen.Id("out").Op("==").Nil().Op("||").Id("resp").Dot("StatusCode").Op("==").Qual("net/http", "StatusNoContent")).Block(
			jen.Return(jen.Nil()),
		),
		jen.Return(jen.Qual("encoding/json", "NewDecoder").Call(jen.Id("resp").Dot("Body")).Dot("Decode").Call(jen.Id("out"))),
	)

	f.Comment("joinPK mirrors splitPK on the server: composite primary keys are path-joined with \"/\".")
	f.Func().Id("joinPK").Params(jen.Id("pk").Op("...").Any()).String().Block(
		jen.Id("parts").Op(":=").Make(jen.Index().String(), jen.Len(jen.Id("pk"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("v")).Op(":=").Range().Id("pk")).Block(
			jen.Id("parts").Index(jen.Id("i")).Op("=").Qual("fmt", "Sprint").Call(jen.Id("v")),
		),
		jen.Return(jen.Qual("strings", "Join").Call(jen.Id("parts"), jen.Lit("/"))),
	)
}

// genClient emits one {Type}Client with List/Get/Create/Update/Delete
// methods plus, for each direct relation of this resource (r.Relations), a
// ListWith<Rel>/GetByPKWith<Rel> variant that pre-populates the include
// spec for that single relation. Multi-hop relation chains get no methods
// of their own.
func genClient(f *jen.File, r *Resource) {
	typeName := r.TypeName
	clientName := typeName + "Client"
	base := "/v1/" + r.RouteName

	f.Commentf("%s talks to the %s resource's HTTP endpoints.", clientName, typeName)
	f.Type().Id(clientName).Struct(jen.Id("c").Op("*").Id("Client"))

	listResultType := jen.Struct(
		jen.Id("Data").Index().Id(typeName).Tag(map[string]string{"json": "data"}),
		jen.Id("Total").Int().Tag(map[string]string{"json": "total"}),
		jen.Id("Limit").Int().Tag(map[string]string{"json": "limit"}),
		jen.Id("Offset").Int().Tag(map[string]string{"json": "offset"}),
		jen.Id("HasMore").Bool().Tag(map[string]string{"json": "hasMore"}),
	)

	f.Commentf("List%ss runs a POST %s/list request.", typeName, base)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("List"+typeName+"s").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("req").Any(),
	).Params(jen.Any(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Var().Id("out").Add(listResultType)
		g.If(jen.Id("err").Op(":=").Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Qual("net/http", "MethodPost"), jen.Lit(base+"/list"), jen.Id("req"), jen.Op("&").Id("out")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id("out"), jen.Id("err")),
		)
		g.Return(jen.Id("out"), jen.Nil())
	})

	f.Commentf("Get%s runs a GET %s/{pk...} request.", typeName, base)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("Get"+typeName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("pk").Op("...").Any(),
	).Params(jen.Op("*").Id(typeName), jen.Error()).Block(
		jen.Var().Id("out").Id(typeName),
		jen.If(jen.Id("err").Op(":=").Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Qual("net/http", "MethodGet"), jen.Lit(base+"/").Op("+").Id("joinPK").Call(jen.Id("pk").Op("...")), jen.Nil(), jen.Op("&").Id("out")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("err")),
		),
		jen.Return(jen.Op("&").Id("out"), jen.Nil()),
	)

	f.Commentf("Create%s runs a POST %s request, returning the 201 body.", typeName, base)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("Create"+typeName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("body").Map(jen.String()).Any(),
	).Params(jen.Op("*").Id(typeName), jen.Error()).Block(
		jen.Var().Id("out").Id(typeName),
		jen.If(jen.Id("err").Op(":=").Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Qual("net/http", "MethodPost"), jen.Lit(base), jen.Id("body"), jen.Op("&").Id("out")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("err")),
		),
		jen.Return(jen.Op("&").Id("out"), jen.Nil()),
	)

	f.Commentf("Update%s runs a PATCH %s/{pk...} request.", typeName, base)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("Update"+typeName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("body").Map(jen.String()).Any(),
		jen.Id("pk").Op("...").Any(),
	).Params(jen.Op("*").Id(typeName), jen.Error()).Block(
		jen.Var().Id("out").Id(typeName),
		jen.If(jen.Id("err").Op(":=").Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Lit("PATCH"), jen.Lit(base+"/").Op("+").Id("joinPK").Call(jen.Id("pk").Op("...")), jen.Id("body"), jen.Op("&").Id("out")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("err")),
		),
		jen.Return(jen.Op("&").Id("out"), jen.Nil()),
	)

	f.Commentf("Delete%s runs a DELETE %s/{pk...} request.", typeName, base)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("Delete"+typeName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("pk").Op("...").Any(),
	).Error().Block(
		jen.Return(jen.Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Qual("net/http", "MethodDelete"), jen.Lit(base+"/").Op("+").Id("joinPK").Call(jen.Id("pk").Op("...")), jen.Nil(), jen.Nil())),
	)

	for _, rel := range r.Relations {
		genClientRelationMethods(f, r, rel)
	}
}

// genClientRelationMethods emits the ListWith<Rel>/GetByPKWith<Rel>
// convenience pair for one relation: same transport as List/Get, but
// with an include spec for this one relation key pre-populated in the
// request.
func genClientRelationMethods(f *jen.File, r *Resource, rel RelationField) {
	typeName := r.TypeName
	clientName := typeName + "Client"
	relName := camelize(rel.Key)
	base := "/v1/" + r.RouteName

	f.Commentf("ListWith%s behaves like List%ss but eager-loads the %q relation on every row.", relName, typeName, rel.Key)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("ListWith"+relName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("req").Map(jen.String()).Any(),
	).Params(jen.Any(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.If(jen.Id("req").Op("==").Nil()).Block(jen.Id("req").Op("=").Map(jen.String()).Any().Values())
		g.Id("req").Index(jen.Lit("include")).Op("=").Map(jen.String()).Any().Values(jen.Dict{
			jen.Lit(rel.Key): jen.True(),
		})
		g.Var().Id("out").Struct(
			jen.Id("Data").Index().Id(typeName).Tag(map[string]string{"json": "data"}),
			jen.Id("Total").Int().Tag(map[string]string{"json": "total"}),
			jen.Id("Limit").Int().Tag(map[string]string{"json": "limit"}),
			jen.Id("Offset").Int().Tag(map[string]string{"json": "offset"}),
			jen.Id("HasMore").Bool().Tag(map[string]string{"json": "hasMore"}),
		)
		g.If(jen.Id("err").Op(":=").Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Qual("net/http", "MethodPost"), jen.Lit(base+"/list"), jen.Id("req"), jen.Op("&").Id("out")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id("out"), jen.Id("err")),
		)
		g.Return(jen.Id("out"), jen.Nil())
	})

	f.Commentf("GetByPKWith%s behaves like Get%s but eager-loads the %q relation.", relName, typeName, rel.Key)
	f.Func().Params(jen.Id("rc").Op("*").Id(clientName)).Id("GetByPKWith"+relName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("pk").Op("...").Any(),
	).Params(jen.Op("*").Id(typeName), jen.Error()).Block(
		jen.Id("path").Op(":=").Lit(base+"/").Op("+").Id("joinPK").Call(jen.Id("pk").Op("...")).Op("+").Lit("?include=").Op("+").Qual("net/url", "QueryEscape").Call(jen.Lit(`{"`+rel.Key+`":true}`)),
		jen.Var().Id("out").Id(typeName),
		jen.If(jen.Id("err").Op(":=").Id("rc").Dot("c").Dot("do").Call(jen.Id("ctx"), jen.Qual("net/http", "MethodGet"), jen.Id("path"), jen.Nil(), jen.Op("&").Id("out")).Op(";").Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("err")),
		),
		jen.Return(jen.Op("&").Id("out"), jen.Nil()),
	)
}

// genSDK emits the aggregator type that wires every resource client
// together under one SDK handle, the shape application code actually
// constructs.
func genSDK(f *jen.File, m *Model) {
	f.Comment("SDK aggregates every resource client this package exposes.")
	f.Type().Id("SDK").StructFunc(func(g *jen.Group) {
		for _, r := range m.Resources {
			g.Id(r.TypeName).Op("*").Id(r.TypeName + "Client")
		}
	})

	f.Comment("NewSDK builds an SDK against baseURL, sharing one underlying Client across every resource.")
	fields := jen.Dict{}
	for _, r := range m.Resources {
		fields[jen.Id(r.TypeName)] = jen.Op("&").Id(r.TypeName + "Client").Values(jen.Dict{jen.Id("c"): jen.Id("c")})
	}
	f.Func().Id("NewSDK").Params(jen.Id("baseURL").String(), jen.Id("hc").Op("*").Qual("net/http", "Client")).Op("*").Id("SDK").Block(
		jen.Id("c").Op(":=").Id("NewClient").Call(jen.Id("baseURL"), jen.Id("hc")),
		jen.Return(jen.Op("&").Id("SDK").Values(fields)),
	)
}
