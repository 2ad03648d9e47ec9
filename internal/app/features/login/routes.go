// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes registers the public sign-in and registration endpoints on r,
// which is the /api router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/login", h.HandleLogin)
	r.Post("/register", h.HandleRegister)
}
