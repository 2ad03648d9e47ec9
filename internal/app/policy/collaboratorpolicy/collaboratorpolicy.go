// Package collaboratorpolicy decides which collaborators a user may see.
//
// Authorization rules:
//   - Admins see every collaborator
//   - Other approved users see collaborators of their own congregation and
//     collaborators with no congregation
//   - A non-admin may only file a collaborator under their own congregation or none
package collaboratorpolicy

import (
	"net/http"
	"strings"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson"
)

// Scope represents the collaborators a user can access.
type Scope struct {
	All          bool
	Congregation string
}

// For derives the scope of v.
func For(v authz.Viewer) Scope {
	if v.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{Congregation: strings.TrimSpace(v.Congregation)}
}

// FromRequest derives the scope of the signed-in user.
func FromRequest(r *http.Request) Scope {
	v, _ := authz.FromRequest(r)
	return For(v)
}

// Filter returns the Mongo filter selecting visible collaborators.
func (s Scope) Filter() bson.M {
	if s.All {
		return bson.M{}
	}
	unset := []bson.M{
		{"congregation": ""},
		{"congregation": bson.M{"$exists": false}},
	}
	if s.Congregation == "" {
		return bson.M{"$or": unset}
	}
	return bson.M{"$or": append(unset, bson.M{"congregation": s.Congregation})}
}

// Allows reports whether a collaborator of congregation is visible.
func (s Scope) Allows(congregation string) bool {
	congregation = strings.TrimSpace(congregation)
	return s.All || congregation == "" || congregation == s.Congregation
}

// OwningCongregation validates the congregation a new collaborator is filed under.
func (s Scope) OwningCongregation(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if !s.Allows(requested) {
		return "", apperr.Denied("add collaborator")
	}
	return requested, nil
}
