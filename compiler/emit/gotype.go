package emit

import (
	"github.com/dave/jennifer/jen"

	"github.com/pgapigen/pgapigen/catalog"
)

// goType returns the Jennifer code for a column's Go type, wrapped in a
// pointer when the column is nullable so the zero value never collides
// with an explicit NULL in JSON responses.
func goType(c catalog.Column) jen.Code {
	base := baseGoType(c)
	if c.Nullable {
		return jen.Op("*").Add(base)
	}
	return base
}

func baseGoType(c catalog.Column) jen.Code {
	switch c.Type {
	case catalog.TypeUUID:
		return jen.Qual("github.com/google/uuid", "UUID")
	case catalog.TypeText:
		return jen.String()
	case catalog.TypeInteger:
		return jen.Int64()
	case catalog.TypeFloating, catalog.TypeNumeric:
		return jen.Float64()
	case catalog.TypeBoolean:
		return jen.Bool()
	case catalog.TypeTimestamp, catalog.TypeDate:
		return jen.Qual("time", "Time")
	case catalog.TypeJSON:
		return jen.Qual("encoding/json", "RawMessage")
	case catalog.TypeBytea:
		return jen.Index().Byte()
	case catalog.TypeVector:
		return jen.Index().Float64()
	case catalog.TypeArray:
		return jen.Index().Add(elemGoType(c.ArrayElem))
	case catalog.TypeEnum:
		return jen.String()
	default:
		return jen.Any()
	}
}

func elemGoType(t catalog.ColumnType) jen.Code {
	switch t {
	case catalog.TypeInteger:
		return jen.Int64()
	case catalog.TypeFloating, catalog.TypeNumeric:
		return jen.Float64()
	case catalog.TypeBoolean:
		return jen.Bool()
	default:
		return jen.String()
	}
}

// structTags returns the JSON/db struct tags for a column, matching the
// wire name (snake_case, as the column is named in Postgres) rather than
// the Go field name.
func structTags(c catalog.Column) map[string]string {
	tag := c.Name
	if c.Nullable {
		tag += ",omitempty"
	}
	return map[string]string{"json": tag, "db": c.Name}
}
