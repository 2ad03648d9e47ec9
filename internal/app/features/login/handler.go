// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/app/system/inputval"
	"github.com/dalemusser/missio/internal/app/system/metrics"
	"github.com/dalemusser/missio/internal/app/system/ratelimit"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Sign-in outcomes recorded in metrics.
const (
	outcomeSuccess       = "success"
	outcomeUnknownUser   = "unknown_user"
	outcomeWrongPassword = "wrong_password"
	outcomeError         = "error"
	outcomeRateLimited   = "rate_limited"
)

type Handler struct {
	Profiles   *profilestore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// Limiter throttles sign-in attempts and registrations; nil disables
	// throttling.
	Limiter *ratelimit.LoginLimiter
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles:   profilestore.New(db),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email" label:"E-mail"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// ProfileView is the signed-in profile as returned to the client.
type ProfileView struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	Approved     bool   `json:"approved"`
	Congregation string `json:"congregation,omitempty"`
}

func viewOf(p models.Profile) ProfileView {
	return ProfileView{
		ID:           p.ID.Hex(),
		Email:        p.Email,
		Role:         p.Role,
		Status:       p.Status,
		Approved:     p.IsApproved(),
		Congregation: p.Congregation,
	}
}

// HandleLogin handles POST /api/login.
//
// Pending and rejected profiles may sign in; the approval gate on the data
// routes keeps them out until an admin approves them.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "login: decode", err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.ErrLog.Write(w, r, "login: validate", err)
		return
	}
	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			metrics.RecordSignIn(outcomeRateLimited)
			h.ErrLog.TooManyRequests(w, r, "login", reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Authenticate(ctx, in.Email, in.Password)
	switch {
	case errors.Is(err, profilestore.ErrUserNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, in.Email)
		metrics.RecordSignIn(outcomeUnknownUser)
		h.invalidCredentials(w)
		return
	case errors.Is(err, profilestore.ErrWrongPassword):
		h.AuditLog.LoginFailedWrongPassword(ctx, r, p.ID, p.Email)
		metrics.RecordSignIn(outcomeWrongPassword)
		h.invalidCredentials(w)
		return
	case err != nil:
		metrics.RecordSignIn(outcomeError)
		h.ErrLog.Write(w, r, "login: authenticate", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, sessionUser(p)); err != nil {
		metrics.RecordSignIn(outcomeError)
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Unable to sign in.")
		return
	}
	if err := h.Profiles.TouchSignIn(ctx, p.ID); err != nil {
		h.Log.Warn("login: stamp last sign-in", zap.Error(err), zap.String("user_id", p.ID.Hex()))
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, p.ID, p.Email)
	metrics.RecordSignIn(outcomeSuccess)

	respond.OK(w, viewOf(p))
}

// Unknown e-mail and wrong password get the same answer.
func (h *Handler) invalidCredentials(w http.ResponseWriter) {
	respond.JSON(w, http.StatusUnauthorized, uierrors.Body{
		Error:   "invalid_credentials",
		Message: "Invalid e-mail or password.",
	})
}

func sessionUser(p models.Profile) *auth.SessionUser {
	return &auth.SessionUser{
		ID:           p.ID.Hex(),
		Email:        p.Email,
		Role:         p.Role,
		Status:       p.Status,
		Congregation: p.Congregation,
	}
}
