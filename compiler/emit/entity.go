package emit

import (
	"github.com/dave/jennifer/jen"

	"github.com/pgapigen/pgapigen/graph"
)

// genEntity emits the resource's entity struct: one exported field per
// column, tagged for JSON and scan-by-name db access, plus one field per
// relation for the include loader to populate.
func genEntity(f *jen.File, r *Resource) {
	f.Commentf("%s is the model entity for the %q table.", r.TypeName, r.Table.Name)
	f.Type().Id(r.TypeName).StructFunc(func(g *jen.Group) {
		for _, c := range r.Table.Columns {
			g.Id(GoFieldName(c)).Add(goType(c)).Tag(structTags(c))
		}
		for _, rel := range r.Relations {
			fieldType := jen.Op("*").Id(relatedTypeName(rel))
			if rel.Edge.Kind == graph.Many {
				fieldType = jen.Index().Id(relatedTypeName(rel))
			}
			g.Id(camelize(rel.Key)).Add(fieldType).Tag(map[string]string{"json": rel.Key + ",omitempty"})
		}
	})
}

func relatedTypeName(rel RelationField) string {
	return camelize(ruleset.Singularize(rel.Edge.Target))
}
