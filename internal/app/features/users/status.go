package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/features/shared/params"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type statusInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected" label:"Status"`
}

// HandleSetStatus handles POST /api/users/{id}/status.
//
// Allowed moves are pending to approved or rejected, and rejected to
// approved. Admins cannot change their own status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	_, _, actor, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Forbidden(w, r)
		return
	}
	target, err := params.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, "users: set status", err)
		return
	}

	var in statusInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "users: decode status", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "users: validate status", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	from, err := h.Profiles.SetStatus(ctx, actor, target, in.Status)
	if err != nil {
		h.ErrLog.Write(w, r, "users: set status", err)
		return
	}

	h.AuditLog.UserStatusChanged(ctx, r, actor, target, from, in.Status)
	h.Log.Info("user status changed",
		zap.String("user_id", target.Hex()),
		zap.String("from", from),
		zap.String("to", in.Status))

	if h.Pending != nil {
		h.Pending.Refresh()
	}

	p, err := h.Profiles.GetByID(ctx, target)
	if err != nil {
		h.ErrLog.Write(w, r, "users: reload", err)
		return
	}
	respond.OK(w, viewOf(p))
}
