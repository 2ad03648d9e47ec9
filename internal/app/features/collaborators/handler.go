// internal/app/features/collaborators/handler.go
package collaborators

import (
	uierrors "github.com/dalemusser/missio/internal/app/features/errors"
	collaboratorstore "github.com/dalemusser/missio/internal/app/store/collaborators"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the volunteer roster. Visibility comes from
// collaboratorpolicy and is applied in every store query.
type Handler struct {
	Store    *collaboratorstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    collaboratorstore.New(db),
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}
