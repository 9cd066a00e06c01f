// Package filter implements the JSON filter DSL described in the generation
// spec's Filter data model: a recursive sum type of column leaves and
// $and/$or groups, parsed from request bodies and compiled to parameterized
// SQL by Compile.
package filter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pgapigen/pgapigen"
)

// Op is one of the closed set of operator keys a leaf may use.
type Op string

const (
	OpEQ     Op = "$eq"
	OpNE     Op = "$ne"
	OpGT     Op = "$gt"
	OpGTE    Op = "$gte"
	OpLT     Op = "$lt"
	OpLTE    Op = "$lte"
	OpIn     Op = "$in"
	OpNotIn  Op = "$nin"
	OpLike   Op = "$like"
	OpILike  Op = "$ilike"
	OpIs     Op = "$is"
	OpIsNot  Op = "$isNot"
)

var validOps = map[Op]struct{}{
	OpEQ: {}, OpNE: {}, OpGT: {}, OpGTE: {}, OpLT: {}, OpLTE: {},
	OpIn: {}, OpNotIn: {}, OpLike: {}, OpILike: {}, OpIs: {}, OpIsNot: {},
}

// Leaf is a single-column predicate: the operator-to-value mapping drawn
// from the closed operator set. A leaf built from a bare value (not an
// operator object) is normalized to {$eq: value} at parse time, with the
// null-literal rewrite described in §4.4 applied immediately.
type Leaf struct {
	Column string
	Ops    map[Op]any
}

// Group is a logical $and/$or combination of child filters.
type Group struct {
	And []Filter
	Or  []Filter
}

// Filter is the recursive sum type: at most one Group plus any number of
// column Leaves, combined by implicit AND at the root (mirroring §3).
type Filter struct {
	Leaves []Leaf
	Group  *Group
}

// Empty reports whether f carries no constraints ("all rows").
func (f Filter) Empty() bool {
	return len(f.Leaves) == 0 && f.Group == nil
}

// Parse decodes a JSON filter tree at nesting depth 0. maxGroupDepth bounds
// the nesting of $and/$or groups; callers pass MaxGroupDepth for the
// default cap of 2.
func Parse(raw json.RawMessage, maxGroupDepth int) (Filter, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Filter{}, nil
	}
	return parseObject(raw, 0, maxGroupDepth)
}

func parseObject(raw json.RawMessage, depth, maxDepth int) (Filter, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Filter{}, pgapigen.NewValidationError("where", "filter must be a JSON object")
	}

	var f Filter
	groupKeys := 0
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := obj[key]
		switch key {
		case "$and", "$or":
			groupKeys++
			if groupKeys > 1 {
				return Filter{}, pgapigen.NewValidationError("where", "at most one of $and/$or allowed per object")
			}
			if depth+1 > maxDepth {
				return Filter{}, pgapigen.NewValidationError("where", "filter group nesting exceeds maximum depth")
			}
			var items []json.RawMessage
			if err := json.Unmarshal(val, &items); err != nil {
				return Filter{}, pgapigen.NewValidationError("where", key+" must be an array")
			}
			children := make([]Filter, 0, len(items))
			for _, item := range items {
				child, err := parseObject(item, depth+1, maxDepth)
				if err != nil {
					return Filter{}, err
				}
				children = append(children, child)
			}
			g := &Group{}
			if key == "$and" {
				g.And = children
			} else {
				g.Or = children
			}
			f.Group = g
		default:
			leaf, err := parseLeaf(key, val)
			if err != nil {
				return Filter{}, err
			}
			f.Leaves = append(f.Leaves, leaf)
		}
	}
	return f, nil
}

func parseLeaf(column string, val json.RawMessage) (Leaf, error) {
	var probe any
	if err := json.Unmarshal(val, &probe); err != nil {
		return Leaf{}, pgapigen.NewValidationError(column, "invalid value")
	}

	obj, isObj := probe.(map[string]any)
	if !isObj {
		// Bare value: implicit $eq, with the null -> $is rewrite from §4.4/§8.
		if probe == nil {
			return Leaf{Column: column, Ops: map[Op]any{OpIs: nil}}, nil
		}
		return Leaf{Column: column, Ops: map[Op]any{OpEQ: probe}}, nil
	}

	ops := make(map[Op]any, len(obj))
	for k, v := range obj {
		op := Op(k)
		if _, ok := validOps[op]; !ok {
			return Leaf{}, pgapigen.NewValidationError(column, fmt.Sprintf("unknown operator %q", k))
		}
		if op == OpNE && v == nil {
			op = OpIsNot
		}
		ops[op] = v
	}
	return Leaf{Column: column, Ops: ops}, nil
}
