// internal/domain/models/contact.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Spiritual status of a contact reached during an event.
const (
	SpiritualCurious = "curious"
	SpiritualOpen    = "open"
	SpiritualDecided = "decided"
)

// IsValidSpiritualStatus reports whether s is a known status. The empty
// string is allowed and means "not classified".
func IsValidSpiritualStatus(s string) bool {
	switch s {
	case "", SpiritualCurious, SpiritualOpen, SpiritualDecided:
		return true
	}
	return false
}

// Contact is a person reached during an event. It is owned by exactly one
// event result; ResultVersion ties it to the submission that created it.
type Contact struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	EventID         primitive.ObjectID `bson:"event_id" json:"-"`
	ResultVersion   string             `bson:"result_version" json:"-"`
	Name            string             `bson:"name" json:"name"`
	Phone           string             `bson:"phone" json:"phone"`
	Address         string             `bson:"address" json:"address"`
	SpiritualStatus string             `bson:"spiritual_status" json:"spiritualStatus"`
	Observation     string             `bson:"observation" json:"observation"`
}
