// internal/app/features/congregations/routes.go
package congregations

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the Congregation endpoints under /api/congregations.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireApproved)
		pr.Use(sm.RequireRole("admin"))
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
