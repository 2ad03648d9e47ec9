// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers /me and /me/password on the /api router. Pending
// users can reach both so they can see their approval state.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
		pr.Post("/me/password", h.HandleChangePassword)
	})
}
