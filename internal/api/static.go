package api

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed web
var webFS embed.FS

// staticHandler serves the dashboard, from disk when a static dir is configured.
func (s *Server) staticHandler() http.Handler {
	if s.staticDir != "" {
		return http.FileServer(http.Dir(s.staticDir))
	}

	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// Only possible if the embed directive above is changed.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
