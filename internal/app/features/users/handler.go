// internal/app/features/users/handler.go
package users

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PendingCache is the cached pending-approval count kept by the background
// poller. Refresh is called after a status change so the badge is current.
type PendingCache interface {
	Count() int64
	Refresh()
}

type Handler struct {
	Profiles *profilestore.Store
	Pending  PendingCache
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs the user administration handler. pending may be
// nil, in which case the count is read from the database on each request.
func NewHandler(db *mongo.Database, pending PendingCache, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(db),
		Pending:  pending,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// UserView is a profile as listed to admins.
type UserView struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Approved     bool       `json:"approved"`
	Congregation string     `json:"congregation,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

func (h *Handler) pendingCount(ctx context.Context) (int64, error) {
	if h.Pending != nil {
		return h.Pending.Count(), nil
	}
	return h.Profiles.CountPending(ctx)
}
