// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers POST /logout on the /api router.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.With(sm.RequireSignedIn).Post("/logout", h.HandleLogout)
}
