// Package manifest assembles the generation pipeline's two trailing
// outputs: a machine/human-readable contract describing every emitted
// resource, and the embedded client-file manifest that backs the SDK
// pull endpoints. Both are built from the same emit.Model the code
// emitter walks, so they can never drift from the code actually written
// to disk.
package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pgapigen/pgapigen/compiler/emit"
	"github.com/pgapigen/pgapigen/graph"
)

// Contract is the machine-readable description of a generated API.
type Contract struct {
	Version     string               `json:"version"`
	Generated   string               `json:"generated"`
	Resources   []ResourceContract   `json:"resources"`
	Relations   []RelationSummary    `json:"relations"`
}

// ResourceContract describes one generated table's endpoint surface.
type ResourceContract struct {
	Name      string   `json:"name"`
	Route     string   `json:"route"`
	Methods   []Method `json:"methods"`
	Endpoints []string `json:"endpoints"`
}

// Method names one generated handler's HTTP verb and path.
type Method struct {
	Name string `json:"name"`
	Verb string `json:"verb"`
	Path string `json:"path"`
}

// RelationSummary describes one classified edge for the contract's
// relationship section.
type RelationSummary struct {
	Source string `json:"source"`
	Key    string `json:"key"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// BuildContract walks m and produces its Contract. version and
// generatedAt are supplied by the caller (the driver package stamps
// these at generation time) since this package must not read the clock
// itself to stay deterministic across repeated runs of the same schema.
func BuildContract(m *emit.Model, version, generatedAt string) *Contract {
	c := &Contract{Version: version, Generated: generatedAt}
	for _, r := range m.Resources {
		c.Resources = append(c.Resources, resourceContract(r))
	}
	c.Relations = relationSummaries(m.Graph)
	return c
}

func resourceContract(r *emit.Resource) ResourceContract {
	route := "/v1/" + r.RouteName
	item := route + "/{pk}"
	list := route + "/list"
	return ResourceContract{
		Name:  r.TypeName,
		Route: route,
		Methods: []Method{
			{Name: "List" + pluralSuffix(r.TypeName), Verb: "POST", Path: list},
			{Name: "Create" + r.TypeName, Verb: "POST", Path: route},
			{Name: "Get" + r.TypeName, Verb: "GET", Path: item},
			{Name: "Update" + r.TypeName, Verb: "PATCH", Path: item},
			{Name: "Delete" + r.TypeName, Verb: "DELETE", Path: item},
		},
		Endpoints: []string{route, item, list},
	}
}

func pluralSuffix(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "es"
	}
	return name + "s"
}

func relationSummaries(g graph.Graph) []RelationSummary {
	sources := make([]string, 0, len(g))
	for src := range g {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var out []RelationSummary
	for _, src := range sources {
		keys := make([]string, 0, len(g[src]))
		for k := range g[src] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e := g[src][k]
			kind := "one"
			if e.Kind == graph.Many {
				kind = "many"
			}
			if e.Junction != "" {
				kind = "many-to-many"
			}
			out = append(out, RelationSummary{Source: src, Key: k, Target: e.Target, Kind: kind})
		}
	}
	return out
}

// JSON renders c as indented JSON, the body served at /api/contract.json.
func (c *Contract) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Markdown renders c as a human-readable document, the body served at
// /api/contract.md.
func (c *Contract) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# API Contract\n\n")
	fmt.Fprintf(&b, "Version: %s  \nGenerated: %s\n\n", c.Version, c.Generated)
	for _, r := range c.Resources {
		fmt.Fprintf(&b, "## %s\n\n", r.Name)
		fmt.Fprintf(&b, "| Method | Verb | Path |\n|---|---|---|\n")
		for _, m := range r.Methods {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", m.Name, m.Verb, m.Path)
		}
		b.WriteString("\n")
	}
	if len(c.Relations) > 0 {
		fmt.Fprintf(&b, "## Relationships\n\n")
		fmt.Fprintf(&b, "| Source | Key | Target | Kind |\n|---|---|---|---|\n")
		for _, r := range c.Relations {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Source, r.Key, r.Target, r.Kind)
		}
	}
	return b.String()
}
