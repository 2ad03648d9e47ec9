// internal/app/features/events/write.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/policy/eventpolicy"
	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/metrics"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.uber.org/zap"
)

// eventInput is the 5W2H form. Required fields are checked by the store so
// the same rules apply to every caller.
type eventInput struct {
	What         string `json:"what"`
	Why          string `json:"why"`
	Where        string `json:"where"`
	When         string `json:"when"`
	Who          string `json:"who"`
	How          string `json:"how"`
	HowMuch      string `json:"howMuch"`
	Congregation string `json:"congregation"`
}

// fields decodes the body and resolves the owning congregation.
func (h *Handler) fields(w http.ResponseWriter, r *http.Request, scope eventpolicy.Scope) (models.EventFields, error) {
	var in eventInput
	if err := respond.Decode(w, r, &in); err != nil {
		return models.EventFields{}, err
	}
	when, err := parseWhen(in.When, h.Loc)
	if err != nil {
		return models.EventFields{}, err
	}
	cong, err := scope.OwningCongregation(in.Congregation)
	if err != nil {
		return models.EventFields{}, err
	}
	return models.EventFields{
		What:         in.What,
		Why:          in.Why,
		Where:        in.Where,
		When:         when,
		Who:          in.Who,
		How:          in.How,
		HowMuch:      in.HowMuch,
		Congregation: cong,
	}, nil
}

// HandleCreate handles POST /api/events. New events are planned.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	f, err := h.fields(w, r, eventpolicy.FromRequest(r))
	if err != nil {
		h.ErrLog.Write(w, r, "create event", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Store.Create(ctx, f)
	if err != nil {
		h.ErrLog.Write(w, r, "create event", err)
		return
	}
	metrics.RecordEventCreated(e.Congregation)
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventEventCreated, e.ID, e.What, e.Congregation)

	respond.JSON(w, http.StatusCreated, e)
}

// HandleUpdate handles PUT /api/events/{id}. Status and result are kept.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "update event", err)
		return
	}
	scope := eventpolicy.FromRequest(r)
	filter, ok := scope.Filter()
	if !ok {
		h.ErrLog.Write(w, r, "update event", apperr.NotFound("events.update"))
		return
	}
	f, err := h.fields(w, r, scope)
	if err != nil {
		h.ErrLog.Write(w, r, "update event", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Update(ctx, id, f, filter); err != nil {
		h.ErrLog.Write(w, r, "update event", err)
		return
	}
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventEventUpdated, id, f.What, f.Congregation)

	// Re-read with the caller's scope: an admin may have moved the event.
	e, err := h.Store.Get(ctx, id, filter)
	if err != nil {
		h.ErrLog.Write(w, r, "update event: reload", err)
		return
	}
	respond.OK(w, e)
}

// HandleDelete handles DELETE /api/events/{id}. The event's contacts go
// with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "delete event", err)
		return
	}
	filter, ok := eventpolicy.FromRequest(r).Filter()
	if !ok {
		h.ErrLog.Write(w, r, "delete event", apperr.NotFound("events.delete"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, cong, actor, _ := authz.UserCtx(r)
	err = h.Store.Delete(ctx, id, filter)
	if err != nil && !apperr.IsPartial(err) {
		h.ErrLog.Write(w, r, "delete event", err)
		return
	}
	// A partial delete still removed the event.
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventEventDeleted, id, "", cong)
	if err != nil {
		h.ErrLog.Write(w, r, "delete event", err)
		return
	}
	h.Log.Info("event deleted", zap.String("event_id", id.Hex()))

	respond.NoContent(w)
}
