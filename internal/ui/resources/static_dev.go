//go:build dev

package resources

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// getStaticDir resolves the static directory next to this source file so
// stylesheet edits show up on the next page load.
func getStaticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// Files on disk change under the server, so they are never versioned.
func assetVersion(string) string { return "" }

// Handler serves static files from the filesystem without caching.
func Handler() http.Handler {
	staticDir := getStaticDir()
	slog.Info("static assets served from filesystem", "path", staticDir)
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(os.DirFS(staticDir))))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		fileServer.ServeHTTP(w, r)
	})
}
