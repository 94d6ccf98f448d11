//go:build !dev

package resources

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"net/http"
	"sync"
)

//go:embed static/*
var staticFS embed.FS

var versions sync.Map // asset path -> content version

// assetVersion is the first bytes of the asset's SHA-256, or empty if the
// asset is not embedded.
func assetVersion(path string) string {
	if v, ok := versions.Load(path); ok {
		return v.(string)
	}
	data, err := staticFS.ReadFile("static/" + path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	v := hex.EncodeToString(sum[:6])
	versions.Store(path, v)
	return v
}

// Handler serves the static files embedded in the binary. Versioned requests
// are cached for a year; unversioned ones for a day.
func Handler() http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}
		fileServer.ServeHTTP(w, r)
	})
}
