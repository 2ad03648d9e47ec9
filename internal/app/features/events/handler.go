// internal/app/features/events/handler.go
package events

import (
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	eventstore "github.com/dalemusser/missio/internal/app/store/events"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the event lifecycle: planning, editing, result submission
// and deletion. Visibility comes from eventpolicy.
type Handler struct {
	Store    *eventstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger

	// Loc interprets event times sent without a zone offset.
	Loc *time.Location
}

func NewHandler(db *mongo.Database, loc *time.Location, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Store:    eventstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
		Loc:      loc,
	}
}
