// internal/app/store/collaborators/collaboratorstore.go
package collaboratorstore

import (
	"context"
	"strings"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/normalize"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("collaborators")}
}

// List returns the collaborators matching scope, ordered by name. Pass an
// empty filter for the full roster.
func (s *Store) List(ctx context.Context, scope bson.M) ([]models.Collaborator, error) {
	if scope == nil {
		scope = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, scope, opts)
	if err != nil {
		return nil, apperr.Remote("collaborators.list", err)
	}
	defer cur.Close(ctx)

	out := []models.Collaborator{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Remote("collaborators.list", err)
	}
	return out, nil
}

// Add inserts a collaborator. Name is required; the note is stored as plain text.
func (s *Store) Add(ctx context.Context, c models.Collaborator) (models.Collaborator, error) {
	c.Name = normalize.Name(c.Name)
	if c.Name == "" {
		return models.Collaborator{}, apperr.Required("name")
	}
	// Names are joined with commas in an event's who list.
	if strings.Contains(c.Name, ",") {
		return models.Collaborator{}, apperr.Invalid("name", "must not contain a comma")
	}
	c.ID = primitive.NewObjectID()
	c.NameCI = text.Fold(c.Name)
	c.Contact = strings.TrimSpace(c.Contact)
	c.Congregation = strings.TrimSpace(c.Congregation)
	c.Observation = strings.TrimSpace(c.Observation)

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Collaborator{}, apperr.Remote("collaborators.add", err)
	}
	return c, nil
}

// Delete removes a collaborator visible in scope. Events naming the
// collaborator in their who list are not touched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, scope bson.M) error {
	filter := bson.M{"_id": id}
	if len(scope) > 0 {
		filter = bson.M{"$and": []bson.M{filter, scope}}
	}
	res, err := s.c.DeleteOne(ctx, filter)
	if err != nil {
		return apperr.Remote("collaborators.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("collaborators.delete")
	}
	return nil
}

// Count returns the number of collaborators matching scope.
func (s *Store) Count(ctx context.Context, scope bson.M) (int64, error) {
	if scope == nil {
		scope = bson.M{}
	}
	n, err := s.c.CountDocuments(ctx, scope)
	if err != nil {
		return 0, apperr.Remote("collaborators.count", err)
	}
	return n, nil
}
