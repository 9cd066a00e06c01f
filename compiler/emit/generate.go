package emit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/pgapigen/pgapigen"
)

// file is a generated file buffered in memory; nothing touches disk until
// every file in a Generate call has rendered successfully.
type file struct {
	path string
	buf  []byte
}

// Generate renders every file this Model implies — one entity+routes file
// per table for the server package, the shared schema and runtime glue
// files, and a parallel client SDK package — and writes them to
// Config.OutDir.Server/Config.OutDir.ClientDir() only after all of them
// have rendered without error, so a render failure leaves nothing on disk.
// The files are then written one at a time, server package first; a write
// failure leaves the files written before it in place. The returned map is the client
// package's files keyed by path relative to the client root, handed back
// so the driver can fold them into the SDK-pull manifest without
// re-rendering anything.
func Generate(ctx context.Context, m *Model) (map[string]string, error) {
	pkg := filepath.Base(m.Config.OutDir.Server)
	clientPkg := filepath.Base(m.Config.OutDir.ClientDir())

	serverFiles := make([]*file, len(m.Resources)+2)
	clientFiles := make([]*file, len(m.Resources)+2)
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(2 * (len(m.Resources) + 2))

	for i, r := range m.Resources {
		i, r := i, r
		eg.Go(func() error {
			f := jen.NewFile(pkg)
			genEntity(f, r)
			genValidation(f, r)
			soft := m.Config.SoftDeleteColumn
			if soft != "" && !r.Table.HasColumn(soft) {
				soft = ""
			}
			genRoutes(f, r, m.Schema, soft, m.Config.IncludeMethodsDepth)
			rendered, err := renderFile(f)
			if err != nil {
				return pgapigen.NewEmissionError(r.Table.Name+".go", "render", err)
			}
			serverFiles[i] = &file{path: r.Table.Name + ".go", buf: rendered}
			return nil
		})
		eg.Go(func() error {
			f := jen.NewFile(clientPkg)
			genClient(f, r)
			rendered, err := renderFile(f)
			if err != nil {
				return pgapigen.NewEmissionError(r.Table.Name+"_client.go", "render", err)
			}
			clientFiles[i] = &file{path: r.Table.Name + "_client.go", buf: rendered}
			return nil
		})
	}

	schemaIdx := len(m.Resources)
	eg.Go(func() error {
		f := jen.NewFile(pkg)
		genSchemaFile(f, m)
		rendered, err := renderFile(f)
		if err != nil {
			return pgapigen.NewEmissionError("schema_gen.go", "render", err)
		}
		serverFiles[schemaIdx] = &file{path: "schema_gen.go", buf: rendered}
		return nil
	})
	runtimeIdx := schemaIdx + 1
	eg.Go(func() error {
		f := jen.NewFile(pkg)
		genRuntimeFile(f, m.Config.SoftDeleteColumn, m.Config.IncludeMethodsDepth)
		genMountAll(f, m)
		rendered, err := renderFile(f)
		if err != nil {
			return pgapigen.NewEmissionError("runtime_gen.go", "render", err)
		}
		serverFiles[runtimeIdx] = &file{path: "runtime_gen.go", buf: rendered}
		return nil
	})

	eg.Go(func() error {
		f := jen.NewFile(clientPkg)
		genClientCore(f)
		rendered, err := renderFile(f)
		if err != nil {
			return pgapigen.NewEmissionError("client_gen.go", "render", err)
		}
		clientFiles[schemaIdx] = &file{path: "client_gen.go", buf: rendered}
		return nil
	})
	eg.Go(func() error {
		f := jen.NewFile(clientPkg)
		genSDK(f, m)
		rendered, err := renderFile(f)
		if err != nil {
			return pgapigen.NewEmissionError("sdk_gen.go", "render", err)
		}
		clientFiles[runtimeIdx] = &file{path: "sdk_gen.go", buf: rendered}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := writeAll(m.Config.OutDir.Server, serverFiles); err != nil {
		return nil, err
	}
	if err := writeAll(m.Config.OutDir.ClientDir(), clientFiles); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(clientFiles))
	for _, f := range clientFiles {
		out[f.path] = string(f.buf)
	}
	return out, nil
}

func renderFile(f *jen.File) ([]byte, error) {
	var b bytes.Buffer
	if err := f.Render(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// genMountAll emits MountAll, the single entry point a generated server's
// main package calls to wire every table's routes, plus the contract and
// SDK-pull endpoints, onto one mux.
func genMountAll(f *jen.File, m *Model) {
	f.Comment("MountAll registers every generated resource's routes, plus the contract and SDK-pull endpoints, on mux.")
	f.Func().Id("MountAll").Params(jen.Id("mux").Op("*").Qual("net/http", "ServeMux")).BlockFunc(func(g *jen.Group) {
		for _, r := range m.Resources {
			g.Id("Mount" + r.TypeName).Call(jen.Id("mux"))
		}
		g.Id("mountManifest").Call(jen.Id("mux"))
	})
}

// writeAll flushes every buffered file to outDir, one file at a time. By
// the time this runs every file has already rendered successfully, so a
// failure here is a filesystem problem, not a generation one; it is
// reported for the failing file, and files already written are not
// removed.
func writeAll(outDir string, files []*file) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return pgapigen.NewEmissionError(outDir, "create output directory", err)
	}
	for _, f := range files {
		full := filepath.Join(outDir, f.path)
		if err := os.WriteFile(full, f.buf, 0o644); err != nil {
			return pgapigen.NewEmissionError(f.path, "write", err)
		}
	}
	return nil
}
