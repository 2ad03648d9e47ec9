package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoURI is used when MISSIO_TEST_MONGO_URI is not set.
const DefaultMongoURI = "mongodb://localhost:27017"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		uri := os.Getenv("MISSIO_TEST_MONGO_URI")
		if uri == "" {
			uri = DefaultMongoURI
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(2*time.Second))
		if err != nil {
			clientErr = err
			return
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			clientErr = err
			return
		}
		client = c
	})
	return client, clientErr
}

// SetupTestDB returns a fresh, uniquely named database and drops it when the
// test finishes. The test is skipped if MongoDB cannot be reached.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := sharedClient()
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	name := fmt.Sprintf("missio_test_%s", primitive.NewObjectID().Hex())
	db := c.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// TestClient returns the shared client, skipping the test when MongoDB is
// unavailable. Transaction tests need it.
func TestClient(t *testing.T) *mongo.Client {
	t.Helper()
	c, err := sharedClient()
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	return c
}

// TestContext returns a context with a timeout suitable for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Now returns the current time truncated to milliseconds, the precision
// MongoDB stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
