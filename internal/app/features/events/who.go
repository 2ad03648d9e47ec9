// internal/app/features/events/who.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/policy/eventpolicy"
	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
)

type toggleInput struct {
	Name string `json:"name" validate:"notblank,excludesall=0x2C" label:"Name"`
}

// HandleToggleWho handles POST /api/events/{id}/who: adds the collaborator
// name to the event's who list, or removes it when already present.
// Removing the last name fails because who is required.
func (h *Handler) HandleToggleWho(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "toggle who", err)
		return
	}
	filter, ok := eventpolicy.FromRequest(r).Filter()
	if !ok {
		h.ErrLog.Write(w, r, "toggle who", apperr.NotFound("events.get"))
		return
	}
	var in toggleInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "toggle who: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "toggle who: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Store.Get(ctx, id, filter)
	if err != nil {
		h.ErrLog.Write(w, r, "toggle who: load", err)
		return
	}
	f := models.EventFields{
		What:         e.What,
		Why:          e.Why,
		Where:        e.Where,
		When:         e.When,
		Who:          models.ToggleWho(e.Who, in.Name),
		How:          e.How,
		HowMuch:      e.HowMuch,
		Congregation: e.Congregation,
	}
	if err := h.Store.Update(ctx, id, f, filter); err != nil {
		h.ErrLog.Write(w, r, "toggle who", err)
		return
	}
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventEventUpdated, id, e.What, e.Congregation)

	e.Who = f.Who
	respond.OK(w, e)
}
