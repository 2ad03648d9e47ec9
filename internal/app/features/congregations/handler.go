// internal/app/features/congregations/handler.go
package congregations

import (
	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	congregationstore "github.com/dalemusser/missio/internal/app/store/congregations"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Congregations.
type Handler struct {
	Store    *congregationstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a new Congregations handler bound to a DB and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    congregationstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
