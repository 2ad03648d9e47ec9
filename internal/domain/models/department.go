// internal/domain/models/department.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is a ministry area an event can be planned for (the "why" of 5W2H).
type Department struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
}
