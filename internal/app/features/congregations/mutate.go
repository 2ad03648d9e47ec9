// internal/app/features/congregations/mutate.go
package congregations

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type createInput struct {
	Name string `json:"name" validate:"notblank" label:"Name"`
}

// HandleCreate adds a congregation. Duplicate names are accepted.
//
// Route: POST /api/congregations
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "create congregation: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "create congregation: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.Add(ctx, in.Name)
	if err != nil {
		h.ErrLog.Write(w, r, "create congregation", err)
		return
	}
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventCongregationCreated, c.ID, c.Name, c.Name)

	respond.JSON(w, http.StatusCreated, c)
}

// HandleDelete removes a congregation. Events, collaborators and profiles
// that name it keep the name.
//
// Route: DELETE /api/congregations/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "delete congregation", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "delete congregation: load", err)
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.Write(w, r, "delete congregation", err)
		return
	}
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventCongregationDeleted, id, c.Name, c.Name)
	h.Log.Info("congregation deleted", zap.String("congregation_id", id.Hex()), zap.String("name", c.Name))

	respond.NoContent(w)
}
