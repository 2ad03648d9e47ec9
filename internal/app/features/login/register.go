package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
)

type registerInput struct {
	Email           string `json:"email" validate:"required,email" label:"E-mail"`
	Password        string `json:"password" validate:"required,min=6" label:"Password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password" label:"Password confirmation"`
	Congregation    string `json:"congregation" validate:"notblank" label:"Congregation"`
}

// HandleRegister handles POST /api/register. The new profile is a pending
// user; it is not signed in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "register: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "register: validate", err)
		return
	}
	if h.Limiter != nil {
		if ok, reason := h.Limiter.CheckRegister(r); !ok {
			h.ErrLog.TooManyRequests(w, r, "register", reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Register(ctx, in.Email, in.Password, in.Congregation)
	if err != nil {
		h.ErrLog.Write(w, r, "register: create profile", err)
		return
	}
	h.AuditLog.Registered(ctx, r, p.ID, p.Email, p.Congregation)

	respond.JSON(w, http.StatusCreated, viewOf(p))
}
