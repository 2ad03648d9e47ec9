// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/missio/internal/app/system/ratelimit"
	"github.com/dalemusser/missio/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app, plus the
// long-lived workers that share their lifetime.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// PendingPoll is created in ConnectDB, started in Startup, read by the
	// users feature and stopped in Shutdown.
	PendingPoll *workers.PendingPoll

	// LoginLimiter throttles POST /api/login. Its sweeper runs from Startup
	// to Shutdown.
	LoginLimiter *ratelimit.LoginLimiter
}
