// internal/app/system/authz/authz.go

// Package authz turns the signed-in session user into the Viewer that the
// policy packages scope queries by.
package authz

import (
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/app/system/normalize"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Viewer is who is asking. Role and Status are canonical; Congregation limits
// what a non-admin may see.
type Viewer struct {
	UserID       primitive.ObjectID
	Role         string
	Status       string
	Congregation string
}

func (v Viewer) IsAdmin() bool { return v.Role == models.RoleAdmin }

// IsApproved follows the status alone.
func (v Viewer) IsApproved() bool { return v.Status == models.StatusApproved }

// FromRequest returns the Viewer for the signed-in user. ok is false when
// nobody is signed in or the session ID is not an ObjectID.
func FromRequest(r *http.Request) (v Viewer, ok bool) {
	u, found := auth.CurrentUser(r)
	if !found {
		return Viewer{}, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Viewer{}, false
	}
	return Viewer{
		UserID:       id,
		Role:         normalize.Role(u.Role),
		Status:       normalize.Status(u.Status),
		Congregation: u.Congregation,
	}, true
}

// UserCtx unpacks FromRequest for handlers that only need the pieces. Without
// a valid user it returns "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role, congregation string, userID primitive.ObjectID, ok bool) {
	v, ok := FromRequest(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	return v.Role, v.Congregation, v.UserID, true
}
