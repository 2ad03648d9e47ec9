// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under /api/audit. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireApproved)
		pr.Use(sm.RequireRole("admin"))

		pr.Get("/", h.ServeList)
	})

	return r
}
