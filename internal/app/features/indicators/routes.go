// internal/app/features/indicators/routes.go
package indicators

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the performance indicators under /api/indicators (admin only).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireApproved)
	r.Use(sm.RequireRole("admin"))
	r.Get("/", h.ServeIndicators)
	return r
}
