// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the Event endpoints under /api/events. Any approved user
// may use them; eventpolicy narrows what each user sees and touches.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireApproved)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(er chi.Router) {
		er.Get("/", h.ServeGet)
		er.Put("/", h.HandleUpdate)
		er.Delete("/", h.HandleDelete)
		er.Post("/result", h.HandleAttachResult)
		er.Post("/who", h.HandleToggleWho)
	})

	return r
}
