// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/yotsuba-lab/manabi/internal/server/handlers"
)

// NewRouter creates and configures the HTTP router. All endpoints except the
// health check require a bearer session token signed with jwtSecret.
func NewRouter(svc *handlers.Services, jwtSecret []byte, version string) http.Handler {
	mux := &http.ServeMux{}

	hh := handlers.NewHealthHandler(version)
	ch := handlers.NewContentHandler(svc)
	sh := handlers.NewSearchHandler(svc)
	rh := handlers.NewRecordHandler(svc)

	// Health check
	mux.Handle("GET /api/health", Wrap(hh.Health))

	// Repository content endpoints
	mux.Handle("GET /api/files", WrapAuth(ch.ListFiles, jwtSecret))
	mux.Handle("GET /api/files/content", WrapAuth(ch.GetFile, jwtSecret))
	mux.Handle("PUT /api/files/content", WrapAuth(ch.PutFile, jwtSecret))
	mux.Handle("POST /api/folders", WrapAuth(ch.CreateFolder, jwtSecret))
	mux.Handle("GET /api/folders/children", WrapAuth(ch.ListChildren, jwtSecret))
	mux.Handle("POST /api/refresh", WrapAuth(ch.Refresh, jwtSecret))

	// Record endpoints
	mux.Handle("GET /api/search", WrapAuth(sh.Search, jwtSecret))
	mux.Handle("POST /api/records", WrapAuth(rh.CreateRecord, jwtSecret))
	mux.Handle("PUT /api/records/{id}", WrapAuth(rh.UpdateRecord, jwtSecret))
	mux.Handle("DELETE /api/records/{id}", WrapAuth(rh.DeleteRecord, jwtSecret))
	mux.Handle("GET /api/categories", WrapAuth(rh.ListCategories, jwtSecret))
	mux.Handle("POST /api/categories", WrapAuth(rh.CreateCategory, jwtSecret))

	return WithRequestLogging(mux)
}
