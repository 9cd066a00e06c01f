package emit

import (
	"github.com/dave/jennifer/jen"
)

// genValidation emits Validate{Type}Insert/Validate{Type}Update, the
// schema-level checks a create/update handler runs before touching the
// database: Insert requires every non-nullable, no-default column be
// present; Update rejects any primary-key column outright rather than
// relying solely on Resource.Update's silent strip, matching the
// testable property that a patch naming a primary-key column is an
// error rather than a no-op.
func genValidation(f *jen.File, r *Resource) {
	f.Commentf("Validate%sInsert checks body against the required columns of %q before Create runs.", r.TypeName, r.Table.Name)
	f.Func().Id("Validate"+r.TypeName+"Insert").Params(jen.Id("body").Map(jen.String()).Any()).Error().BlockFunc(func(g *jen.Group) {
		g.Id("verr").Op(":=").Op("&").Qual(pkgPgapigen, "ValidationError").Values()
		for _, c := range r.Table.Columns {
			if c.Nullable || c.HasDefault {
				continue
			}
			g.If(jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Id("body").Index(jen.Lit(c.Name)).Op(";").Op("!").Id("ok")).Block(
				jen.Id("verr").Dot("AddIssue").Call(jen.Lit(c.Name), jen.Lit("required")),
			)
		}
		g.If(jen.Id("verr").Dot("HasIssues").Call()).Block(jen.Return(jen.Id("verr")))
		g.Return(jen.Nil())
	})

	f.Commentf("Validate%sUpdate rejects any primary-key column in body before Update runs.", r.TypeName)
	f.Func().Id("Validate"+r.TypeName+"Update").Params(jen.Id("body").Map(jen.String()).Any()).Error().BlockFunc(func(g *jen.Group) {
		g.Id("verr").Op(":=").Op("&").Qual(pkgPgapigen, "ValidationError").Values()
		for _, c := range r.PrimaryKey {
			g.If(jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Id("body").Index(jen.Lit(c.Name)).Op(";").Id("ok")).Block(
				jen.Id("verr").Dot("AddIssue").Call(jen.Lit(c.Name), jen.Lit("primary key columns cannot be updated")),
			)
		}
		g.If(jen.Id("verr").Dot("HasIssues").Call()).Block(jen.Return(jen.Id("verr")))
		g.Return(jen.Nil())
	})
}
