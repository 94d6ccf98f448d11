// Package resources serves the stylesheet and other static files of the UI.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// StaticPath returns the URL path for a static asset. Embedded assets carry a
// content version so browsers can cache them until the binary changes.
func StaticPath(path string) string {
	if v := assetVersion(path); v != "" {
		return "/static/" + path + "?v=" + v
	}
	return "/static/" + path
}
