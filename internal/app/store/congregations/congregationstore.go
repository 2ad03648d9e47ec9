// internal/app/store/congregations/congregationstore.go
package congregationstore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection("congregations")}
}

// List returns every congregation ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Congregation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Remote("congregations.list", err)
	}
	defer cur.Close(ctx)

	out := []models.Congregation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Remote("congregations.list", err)
	}
	return out, nil
}

// Add inserts a congregation. Duplicate names are allowed.
func (s *Store) Add(ctx context.Context, name string) (models.Congregation, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Congregation{}, apperr.Required("name")
	}
	c := models.Congregation{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Congregation{}, apperr.Remote("congregations.add", err)
	}
	return c, nil
}

// GetByID loads one congregation.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Congregation, error) {
	var c models.Congregation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Congregation{}, apperr.Remote("congregations.get", err)
	}
	return c, nil
}

// Delete removes a congregation by ID. Records that name it are left as is.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Remote("congregations.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("congregations.delete")
	}
	return nil
}
