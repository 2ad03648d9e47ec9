// internal/app/features/events/list.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/policy/eventpolicy"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
)

// ServeList handles GET /api/events. Newest first, each completed event
// with its contacts. A user who can see no events gets an empty list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, ok := eventpolicy.FromRequest(r).Filter()
	if !ok {
		respond.OK(w, []models.Event{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.List(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, "list events", err)
		return
	}
	respond.OK(w, list)
}

// ServeGet handles GET /api/events/{id}: the full event detail report.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "get event", err)
		return
	}
	filter, ok := eventpolicy.FromRequest(r).Filter()
	if !ok {
		h.ErrLog.Write(w, r, "get event", apperr.NotFound("events.get"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Store.Get(ctx, id, filter)
	if err != nil {
		h.ErrLog.Write(w, r, "get event", err)
		return
	}
	respond.OK(w, e)
}
