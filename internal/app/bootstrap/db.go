// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/indexes"
	"github.com/dalemusser/missio/internal/app/system/ratelimit"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		PendingPoll:   workers.NewPendingPoll(profilestore.New(db), logger, appCfg.PendingPollInterval),
		LoginLimiter:  ratelimit.NewLoginLimiter(),
	}, nil
}

// EnsureSchema creates the indexes every store relies on, including the
// unique index on profile e-mail.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
