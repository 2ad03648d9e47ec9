// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard under /api/dashboard. Approved users only;
// the numbers are scoped to what the user may see.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireApproved)
	r.Get("/", h.ServeDashboard)
	return r
}
