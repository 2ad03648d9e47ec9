package profilestore

import (
	"context"

	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/app/system/normalize"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so role, approval and congregation
// changes apply on the next request.
type Fetcher struct {
	profiles *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{profiles: db.Collection("profiles")}
}

// FetchUser returns nil if the profile does not exist or cannot be read.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var p models.Profile
	proj := options.FindOne().SetProjection(bson.M{
		"_id":          1,
		"email":        1,
		"role":         1,
		"status":       1,
		"congregation": 1,
	})
	if err := f.profiles.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&p); err != nil {
		return nil
	}

	return &auth.SessionUser{
		ID:           p.ID.Hex(),
		Email:        p.Email,
		Role:         normalize.Role(p.Role),
		Status:       normalize.Status(p.Status),
		Congregation: p.Congregation,
	}
}
