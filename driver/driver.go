// Package driver orchestrates the full generation pipeline: resolve
// config, introspect the database, classify its relations, and emit the
// server and client packages. It is the single entry point a CLI main
// package calls into; every stage it drives already validates its own
// input, so this package's job is sequencing and error-stage tagging,
// not re-validating anything.
package driver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/catalog"
	"github.com/pgapigen/pgapigen/compiler/emit"
	"github.com/pgapigen/pgapigen/config"
	"github.com/pgapigen/pgapigen/dialect/sql"
	"github.com/pgapigen/pgapigen/graph"
	"github.com/pgapigen/pgapigen/manifest"
)

// contractVersion is stamped into every generated contract and SDK
// manifest. It tracks this module's wire-format version, not the
// introspected database's schema version.
const contractVersion = "v1"

// Result is what a successful Run produces, returned so callers (tests,
// or a CLI that wants to print a summary) don't need to re-derive table
// and relation counts from the emitted files.
type Result struct {
	Model *catalog.Model
	Graph graph.Graph
}

// Run executes Config -> catalog.Model -> graph.Graph -> emit.Model ->
// files -> contract/manifest. The connection opened for introspection is
// closed before Run returns; the generated server opens its own
// connection at runtime via Config.ConnectionString.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	source, err := cfg.ConnectionString.Resolve()
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(source)
	if err != nil {
		return nil, pgapigen.NewIntrospectionError("connect", cfg.Schema, err)
	}
	defer conn.Close()

	model, err := catalog.NewIntrospector(conn.DB()).Introspect(ctx, cfg.Schema)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(model)
	if err != nil {
		return nil, err
	}

	emitModel := emit.Build(model, g, cfg)
	clientFiles, err := emit.Generate(ctx, emitModel)
	if err != nil {
		return nil, err
	}

	if err := mountManifest(cfg, emitModel, clientFiles); err != nil {
		return nil, err
	}

	return &Result{Model: model, Graph: g}, nil
}

// mountManifest builds the contract and SDK-pull manifest from the same
// emit.Model the code emitter just walked, and writes the small glue file
// that wires manifest.MountContract/MountSDK into the generated server's
// MountAll. generatedAt is read once here, never inside package manifest
// or package emit, so repeated runs against an unchanged schema only ever
// differ in this one timestamp field.
func mountManifest(cfg *config.Config, m *emit.Model, clientFiles map[string]string) error {
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	contract := manifest.BuildContract(m, contractVersion, generatedAt)
	contractJSON, err := contract.JSON()
	if err != nil {
		return pgapigen.NewEmissionError("manifest_gen.go", "marshal contract", err)
	}

	sdkManifest := manifest.New(contractVersion, clientFiles)
	sdkManifestJSON, err := json.Marshal(sdkManifest)
	if err != nil {
		return pgapigen.NewEmissionError("manifest_gen.go", "marshal sdk manifest", err)
	}

	return emit.WriteManifestMount(cfg.OutDir.Server, contractJSON, sdkManifestJSON, cfg.Auth.PullToken.EnvVar())
}
