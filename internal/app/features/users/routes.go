// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user administration routes.
//
// Example mount from bootstrap:
//
//	h := users.NewHandler(db, poller, errLog, auditLogger, logger)
//	r.Mount("/users", users.Routes(h, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only approved admins manage users.
		pr.Use(sm.RequireApproved)
		pr.Use(sm.RequireRole("admin"))

		pr.Get("/", h.ServeList)
		pr.Get("/pending", h.ServePending)
		pr.Get("/pending-count", h.ServePendingCount)
		pr.Post("/{id}/status", h.HandleSetStatus)
	})

	return r
}
