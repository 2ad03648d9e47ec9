// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	"github.com/dalemusser/missio/internal/app/store/audit"
	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events   *audit.Store
	Profiles *profilestore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs an Audit Log feature handler bound to
// the given Mongo database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   audit.New(db),
		Profiles: profilestore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
