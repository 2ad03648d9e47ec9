// internal/domain/models/congregation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Congregation is a local church branch. Events, collaborators and profiles
// refer to it by name, not by ID, so deleting one never cascades.
type Congregation struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
