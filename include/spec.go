// Package include implements the IncludeSpec tree described in the
// generation spec's Data Model: a per-request description of which related
// rows to hydrate, validated against a table's relation graph and a
// configured maximum depth.
package include

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/filter"
	"github.com/pgapigen/pgapigen/graph"
)

// Options describes the per-relation knobs a caller may attach to an
// include entry (§3 IncludeSpec).
type Options struct {
	Include *Spec
	Limit   *int
	Offset  *int
	OrderBy []string
	Order   []string
	Select  []string
	Exclude []string
	Where   filter.Filter
}

// Spec is one node of the include tree: a relation key mapped to its
// options. A relation present with default options (bare `true` on the
// wire) has a zero Options value.
type Spec struct {
	Relations map[string]Options
}

// Depth returns the length of the longest nested include chain rooted here.
func (s *Spec) Depth() int {
	if s == nil || len(s.Relations) == 0 {
		return 0
	}
	max := 0
	for _, opt := range s.Relations {
		if opt.Include != nil {
			if d := opt.Include.Depth(); d+1 > max {
				max = d + 1
			}
		} else if max < 1 {
			max = 1
		}
	}
	return max
}

// Parse validates and decodes a JSON include tree for rootTable against g,
// rejecting unknown relation keys, spec violations, and chains deeper than
// maxDepth. Parse only enforces graph-level structure (depth, relation
// existence, option shape); it does not check orderBy, order, select or
// exclude column names against the target table's columns.
func Parse(raw json.RawMessage, rootTable string, g graph.Graph, maxDepth int) (*Spec, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return parseAt(raw, rootTable, g, 0, maxDepth)
}

func parseAt(raw json.RawMessage, table string, g graph.Graph, depth, maxDepth int) (*Spec, error) {
	if depth >= maxDepth {
		return nil, pgapigen.NewValidationError("include", "include depth exceeds configured maximum")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, pgapigen.NewValidationError("include", "must be a JSON object")
	}

	edges := g.Edges(table)
	spec := &Spec{Relations: make(map[string]Options, len(obj))}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		edge, ok := edges[key]
		if !ok {
			// Unknown relation keys are skipped, not rejected, and nothing is
			// logged for them; they simply never reach the loader.
			continue
		}
		opt, err := parseOptions(obj[key], edge, g, depth, maxDepth)
		if err != nil {
			return nil, err
		}
		spec.Relations[key] = opt
	}
	return spec, nil
}

func parseOptions(raw json.RawMessage, edge *graph.Edge, g graph.Graph, depth, maxDepth int) (Options, error) {
	var lit bool
	if err := json.Unmarshal(raw, &lit); err == nil {
		return Options{}, nil
	}

	var body struct {
		Include json.RawMessage  `json:"include"`
		Limit   *int             `json:"limit"`
		Offset  *int             `json:"offset"`
		OrderBy json.RawMessage  `json:"orderBy"`
		Order   json.RawMessage  `json:"order"`
		Select  []string         `json:"select"`
		Exclude []string         `json:"exclude"`
		Where   json.RawMessage  `json:"where"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Options{}, pgapigen.NewValidationError("include", fmt.Sprintf("invalid options for relation %q", edge.Target))
	}
	if len(body.Select) > 0 && len(body.Exclude) > 0 {
		return Options{}, pgapigen.NewValidationError("include", "select and exclude are mutually exclusive")
	}

	opt := Options{Limit: body.Limit, Offset: body.Offset, Select: body.Select, Exclude: body.Exclude}

	if body.Include != nil {
		sub, err := parseAt(body.Include, edge.Target, g, depth+1, maxDepth)
		if err != nil {
			return Options{}, err
		}
		opt.Include = sub
	}
	if body.OrderBy != nil {
		cols, err := stringOrSlice(body.OrderBy)
		if err != nil {
			return Options{}, pgapigen.NewValidationError("orderBy", err.Error())
		}
		opt.OrderBy = cols
	}
	if body.Order != nil {
		orders, err := stringOrSlice(body.Order)
		if err != nil {
			return Options{}, pgapigen.NewValidationError("order", err.Error())
		}
		opt.Order = orders
	}
	if body.Where != nil {
		f, err := filter.Parse(body.Where, filter.MaxGroupDepth)
		if err != nil {
			return Options{}, err
		}
		opt.Where = f
	}
	return opt, nil
}

func stringOrSlice(raw json.RawMessage) ([]string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}, nil
	}
	var ss []string
	if err := json.Unmarshal(raw, &ss); err == nil {
		return ss, nil
	}
	return nil, fmt.Errorf("must be a string or array of strings")
}
