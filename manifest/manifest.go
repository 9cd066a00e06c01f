package manifest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Manifest is the embedded mapping from client-file relative path to file
// body that backs the SDK pull workflow. It is built once at generation
// time from the client files the emitter wrote and served unchanged for
// the lifetime of the running server.
type Manifest struct {
	Version string            `json:"version"`
	Files   map[string]string `json:"files"`
}

// New builds a Manifest from a relative-path-to-contents map.
func New(version string, files map[string]string) *Manifest {
	return &Manifest{Version: version, Files: files}
}

// Listing is the body of GET /_psdk/sdk/manifest: file paths only, no
// contents, so a client can decide whether a pull is even necessary
// before downloading anything.
type Listing struct {
	Version string   `json:"version"`
	Files   []string `json:"files"`
}

func (m *Manifest) listing() Listing {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return Listing{Version: m.Version, Files: paths}
}

// Download is the body of GET /_psdk/sdk/download.
type Download struct {
	Version   string            `json:"version"`
	Generated string            `json:"generated"`
	Files     map[string]string `json:"files"`
}

// MountSDK registers the two pull endpoints on mux. When pullToken is
// non-empty, both endpoints require "Authorization: Bearer <pullToken>"
// and respond 401 otherwise.
func MountSDK(mux *http.ServeMux, m *Manifest, generatedAt, pullToken string) {
	mux.HandleFunc("GET /_psdk/sdk/manifest", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, pullToken) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, m.listing())
	})
	mux.HandleFunc("GET /_psdk/sdk/download", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, pullToken) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, Download{Version: m.Version, Generated: generatedAt, Files: m.Files})
	})
}

// MountContract registers the three contract endpoints on mux.
func MountContract(mux *http.ServeMux, c *Contract) {
	mux.HandleFunc("GET /api/contract", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c)
	})
	mux.HandleFunc("GET /api/contract.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c)
	})
	mux.HandleFunc("GET /api/contract.md", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(c.Markdown()))
	})
}

func authorized(r *http.Request, pullToken string) bool {
	if pullToken == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+pullToken
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, strings.TrimSpace(err.Error()), http.StatusInternalServerError)
	}
}
