// internal/app/features/departments/routes.go
package departments

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the Department endpoints under /api/departments.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireApproved)

	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin"))
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
