// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own profile.
type Handler struct {
	Profiles *profilestore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler creates a new userinfo handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}

type meResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Approved     bool       `json:"approved"`
	Congregation string     `json:"congregation,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	CSRFToken    string     `json:"csrfToken"`
}

// ServeMe handles GET /api/me.
//
// The response carries the CSRF token the client must echo in the
// X-CSRF-Token header on every mutating request.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Forbidden(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, "me: load profile", err)
		return
	}

	respond.OK(w, meResponse{
		ID:           p.ID.Hex(),
		Email:        p.Email,
		Role:         p.Role,
		Status:       p.Status,
		Approved:     p.IsApproved(),
		Congregation: p.Congregation,
		CreatedAt:    p.CreatedAt,
		LastSignInAt: p.LastSignInAt,
		CSRFToken:    csrf.Token(r),
	})
}

type passwordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required" label:"Current password"`
	NewPassword     string `json:"newPassword" validate:"required,min=6" label:"New password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword" label:"Password confirmation"`
}

// HandleChangePassword handles POST /api/me/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Forbidden(w, r)
		return
	}

	var in passwordInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "change password: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "change password: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.Write(w, r, "change password: load profile", err)
		return
	}
	if _, err := h.Profiles.Authenticate(ctx, p.Email, in.CurrentPassword); err != nil {
		if errors.Is(err, profilestore.ErrWrongPassword) {
			h.ErrLog.LogBadRequest(w, r, "change password: wrong current password", err,
				"currentPassword", "Current password is incorrect.")
			return
		}
		h.ErrLog.Write(w, r, "change password: authenticate", err)
		return
	}

	if err := h.Profiles.ChangePassword(ctx, uid, in.NewPassword); err != nil {
		h.ErrLog.Write(w, r, "change password: update", err)
		return
	}
	h.AuditLog.PasswordChanged(ctx, r, uid)

	respond.NoContent(w)
}
