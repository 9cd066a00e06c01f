package graph

import "github.com/go-openapi/inflect"

// ruleset centralizes the pluralization rules behind a package-level
// variable so the naming heuristic can be swapped without touching the
// classifier.
var ruleset = inflect.NewDefaultRuleset()

func singular(tableName string) string {
	return ruleset.Singularize(tableName)
}

func plural(tableName string) string {
	return ruleset.Pluralize(tableName)
}
