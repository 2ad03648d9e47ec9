// internal/app/features/reports/handler.go
package reports

import (
	"time"

	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	eventstore "github.com/dalemusser/missio/internal/app/store/events"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the monthly report handlers (JSON, XLSX and CSV).
type Handler struct {
	Events *eventstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	// Loc decides which calendar month an event falls in.
	Loc *time.Location
}

// NewHandler constructs a reports Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Events: eventstore.New(db),
		Log:    logger,
		ErrLog: errLog,
		Loc:    loc,
	}
}
