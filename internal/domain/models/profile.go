// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile approval states. Status is canonical; Approved is a stored mirror
// that is only ever written together with Status.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Profile is an application user.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Approved     bool               `bson:"approved" json:"approved"`
	Status       string             `bson:"status" json:"status"`
	Congregation string             `bson:"congregation,omitempty" json:"congregation,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastSignInAt *time.Time         `bson:"last_sign_in_at,omitempty" json:"last_sign_in_at,omitempty"`
}

// IsAdmin reports whether the profile has the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// IsApproved derives approval from the canonical status.
func (p Profile) IsApproved() bool { return p.Status == StatusApproved }

// CanTransition reports whether the approval state machine allows moving
// from one status to another.
//
//	pending  → approved | rejected
//	rejected → approved
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusRejected:
		return to == StatusApproved
	}
	return false
}
