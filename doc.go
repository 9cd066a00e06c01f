// Package pgapigen introspects a PostgreSQL schema and generates a typed
// HTTP API server and a matching client SDK.
//
// The generation pipeline is strictly linear:
//
//	Config -> catalog.Model -> graph.Graph -> emitter -> files
//
// Package catalog introspects the database into a Model. Package graph
// classifies the Model's foreign keys into a navigable relation Graph.
// Package include builds bounded, recursively-typed include specifications
// from the Graph. Package filter compiles a JSON filter tree into
// parameterized SQL. Package sqlgraph is the runtime include loader that
// batch-hydrates related rows. Package vector extends list queries with
// similarity ordering. Package emit (compiler/emit) turns a Model and Graph into Go
// source files. Package driver orchestrates the whole pipeline, and
// package manifest packages the emitted client sources for the SDK pull
// workflow.
//
// This top-level package holds the error taxonomy shared by every stage.
package pgapigen
