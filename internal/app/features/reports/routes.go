// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the report endpoints under /api/reports. Scope (all
// congregations for admins, own congregation otherwise) is applied in the
// query by reportpolicy.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireApproved)

	r.Get("/monthly", h.ServeMonthly)
	r.Get("/monthly.xlsx", h.ServeMonthlyXLSX)
	r.Get("/monthly.csv", h.ServeMonthlyCSV)

	return r
}
