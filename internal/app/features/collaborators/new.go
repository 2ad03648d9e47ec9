// internal/app/features/collaborators/new.go
package collaborators

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/policy/collaboratorpolicy"
	"github.com/dalemusser/missio/internal/app/store/audit"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
)

type createInput struct {
	Name         string `json:"name" validate:"notblank,excludesall=0x2C" label:"Name"`
	Contact      string `json:"contact"`
	Congregation string `json:"congregation"`
	Observation  string `json:"observation" validate:"max=2000" label:"Observation"`
}

// HandleCreate handles POST /api/collaborators.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "create collaborator: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "create collaborator: validate", err)
		return
	}

	cong, err := collaboratorpolicy.FromRequest(r).OwningCongregation(in.Congregation)
	if err != nil {
		h.ErrLog.Write(w, r, "create collaborator", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.Add(ctx, models.Collaborator{
		Name:         in.Name,
		Contact:      in.Contact,
		Congregation: cong,
		Observation:  in.Observation,
	})
	if err != nil {
		h.ErrLog.Write(w, r, "create collaborator", err)
		return
	}
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.RecordChanged(ctx, r, actor, audit.EventCollaboratorCreated, c.ID, c.Name, c.Congregation)

	respond.JSON(w, http.StatusCreated, c)
}
