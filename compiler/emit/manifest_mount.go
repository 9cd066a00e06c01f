package emit

import (
	"path/filepath"

	"github.com/dave/jennifer/jen"

	"github.com/pgapigen/pgapigen"
)

const pkgManifest = "github.com/pgapigen/pgapigen/manifest"

// WriteManifestMount renders manifest_gen.go into serverDir: the contract
// and SDK-pull manifest, computed once by the driver from manifest.Contract
// and manifest.Manifest, embedded as JSON literals and decoded back into
// those same types at package init so the generated server never needs to
// read either off disk. This keeps emit itself free of any dependency on
// package manifest (which already depends on emit for *Model/*Resource),
// while still letting the generated server call manifest.MountContract and
// manifest.MountSDK directly.
func WriteManifestMount(serverDir string, contractJSON, sdkManifestJSON []byte, pullTokenEnvVar string) error {
	pkg := filepath.Base(serverDir)
	f := jen.NewFile(pkg)

	f.Comment("embeddedContractJSON and embeddedSDKManifestJSON are the contract and SDK-pull manifest this package was generated with, computed once by the driver and baked into source so the running server never re-derives them.")
	f.Var().Id("embeddedContractJSON").Op("=").Index().Byte().Call(jen.Lit(string(contractJSON)))
	f.Var().Id("embeddedSDKManifestJSON").Op("=").Index().Byte().Call(jen.Lit(string(sdkManifestJSON)))

	f.Comment("mountManifest registers the contract and SDK-pull endpoints. Called from MountAll.")
	f.Func().Id("mountManifest").Params(jen.Id("mux").Op("*").Qual("net/http", "ServeMux")).BlockFunc(func(g *jen.Group) {
		g.Var().Id("c").Qual(pkgManifest, "Contract")
		g.Qual("encoding/json", "Unmarshal").Call(jen.Id("embeddedContractJSON"), jen.Op("&").Id("c"))
		g.Qual(pkgManifest, "MountContract").Call(jen.Id("mux"), jen.Op("&").Id("c"))

		g.Var().Id("m").Qual(pkgManifest, "Manifest")
		g.Qual("encoding/json", "Unmarshal").Call(jen.Id("embeddedSDKManifestJSON"), jen.Op("&").Id("m"))

		pullToken := jen.Lit("")
		if pullTokenEnvVar != "" {
			pullToken = jen.Qual("os", "Getenv").Call(jen.Lit(pullTokenEnvVar))
		}
		g.Qual(pkgManifest, "MountSDK").Call(jen.Id("mux"), jen.Op("&").Id("m"), jen.Id("c").Dot("Generated"), pullToken)
	})

	rendered, err := renderFile(f)
	if err != nil {
		return pgapigen.NewEmissionError("manifest_gen.go", "render", err)
	}
	return writeAll(serverDir, []*file{{path: "manifest_gen.go", buf: rendered}})
}
