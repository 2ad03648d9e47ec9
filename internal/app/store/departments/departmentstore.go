// internal/app/store/departments/departmentstore.go
package departmentstore

import (
	"context"

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
	return &Store{c: db.Collection("departments")}
}

func (s *Store) List(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Remote("departments.list", err)
	}
	defer cur.Close(ctx)

	out := []models.Department{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Remote("departments.list", err)
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, name string) (models.Department, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Department{}, apperr.Required("name")
	}
	d := models.Department{
		ID:     primitive.NewObjectID(),
		Name:   name,
		NameCI: text.Fold(name),
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Department{}, apperr.Remote("departments.add", err)
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Remote("departments.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("departments.delete")
	}
	return nil
}
