// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	Sessions *auth.SessionManager
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, AuditLog: audit, Log: logger}
}

// HandleLogout handles POST /api/logout. It always answers 204; a cookie
// that could not be rewritten is only logged.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if u != nil {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}
	respond.NoContent(w)
}
