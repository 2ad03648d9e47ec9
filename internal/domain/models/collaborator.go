// internal/domain/models/collaborator.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborator is a registered volunteer. Congregation is optional; an empty
// value means the collaborator is visible to every congregation.
type Collaborator struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Contact      string             `bson:"contact" json:"contact"`
	Congregation string             `bson:"congregation" json:"congregation"`
	Observation  string             `bson:"observation" json:"observation"`
}
