package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/boundary"
)

// NewRouter creates a chi router with all boundary routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(bridge boundary.Bridge, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(bridge)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/dialog", h.ShowDialog)

	r.Get("/files", h.ListFiles)
	r.Get("/files/{name}", h.ReadFile)
	r.Put("/files/{name}", h.OverwriteFile)
	r.Post("/files/{name}/rename", h.RenameFile)

	r.Post("/context-menu", h.ShowContextMenu)
	r.Post("/context-menu/{id}", h.ChooseMenuEntry)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
