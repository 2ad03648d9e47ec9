// internal/app/features/collaborators/routes.go
package collaborators

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the Collaborator endpoints under /api/collaborators.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireApproved)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
