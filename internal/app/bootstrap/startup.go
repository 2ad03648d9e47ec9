// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	auditstore "github.com/dalemusser/missio/internal/app/store/audit"
	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/auditlog"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs after schema setup and before the handler is built. It seeds
// the admin profile and starts the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	audit := newAuditLogger(deps.MongoDatabase, appCfg, logger)
	if err := ensureAdmin(ctx, deps.MongoDatabase, appCfg, audit, logger); err != nil {
		return err
	}

	if deps.PendingPoll != nil {
		deps.PendingPoll.Start()
	}
	if deps.LoginLimiter != nil {
		deps.LoginLimiter.StartSweeper(5 * time.Minute)
	}
	return nil
}

func newAuditLogger(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
}

// ensureAdmin creates or promotes the configured admin profile. It is a
// no-op when admin_email is blank.
func ensureAdmin(ctx context.Context, db *mongo.Database, appCfg AppConfig, audit *auditlog.Logger, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	p, created, err := profilestore.New(db).EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminPassword)
	if err != nil {
		logger.Error("admin seeding failed", zap.String("email", appCfg.AdminEmail), zap.Error(err))
		return err
	}

	audit.AdminSeeded(ctx, p.ID, p.Email, created)
	if created {
		logger.Info("admin profile created", zap.String("email", p.Email), zap.String("user_id", p.ID.Hex()))
	} else {
		logger.Info("admin profile ensured", zap.String("email", p.Email), zap.String("user_id", p.ID.Hex()))
	}
	return nil
}
