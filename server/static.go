package server

import (
	"log"
	"net/http"
	"os"
)

// StaticFileServer serves the client bundle from a directory, falling back
// to the given path (e.g. /index.html) for unmatched routes so client-side
// routing keeps working. A missing directory serves 404s instead of
// killing a server whose only job is the game endpoint.
func StaticFileServer(dir string, fallbackPath string) http.Handler {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Static directory does not exist: %s, serving 404s.", dir)
		return http.NotFoundHandler()
	}

	fs := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if the requested path is a file that exists
		if _, err := os.Stat(dir + r.URL.Path); err == nil {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, dir+fallbackPath)
	})
}
