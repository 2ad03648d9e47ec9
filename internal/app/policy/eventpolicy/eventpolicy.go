// Package eventpolicy decides which events a user may see and which
// congregation a new or edited event belongs to.
//
// Authorization rules:
//   - Admins see and edit events of every congregation
//   - Approved users see and edit only events of their own congregation
//   - Approved users without a congregation see no events and cannot create any
//   - Everyone else is kept out by the route middleware before this runs
package eventpolicy

import (
	"net/http"
	"strings"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson"
)

// Scope represents the events a user can access.
type Scope struct {
	// CanView is false when the user can see no events at all.
	CanView bool
	// AllCongregations is true for admins.
	AllCongregations bool
	// Congregation restricts a non-admin to a single congregation.
	Congregation string
}

// For derives the scope of v.
func For(v authz.Viewer) Scope {
	if v.IsAdmin() {
		return Scope{CanView: true, AllCongregations: true}
	}
	if !v.IsApproved() || strings.TrimSpace(v.Congregation) == "" {
		return Scope{CanView: false}
	}
	return Scope{CanView: true, Congregation: v.Congregation}
}

// FromRequest derives the scope of the signed-in user.
func FromRequest(r *http.Request) Scope {
	v, ok := authz.FromRequest(r)
	if !ok {
		return Scope{CanView: false}
	}
	return For(v)
}

// Filter returns the Mongo filter selecting the visible events, or ok=false
// when nothing is visible and the query should be skipped.
func (s Scope) Filter() (filter bson.M, ok bool) {
	switch {
	case !s.CanView:
		return nil, false
	case s.AllCongregations:
		return bson.M{}, true
	default:
		return bson.M{"congregation": s.Congregation}, true
	}
}

// OwningCongregation picks the congregation a written event is stored under.
// Admins may choose any (including blank); a non-admin's events always
// belong to their own congregation.
func (s Scope) OwningCongregation(requested string) (string, error) {
	if !s.CanView {
		return "", apperr.Denied("write event")
	}
	if s.AllCongregations {
		return strings.TrimSpace(requested), nil
	}
	return s.Congregation, nil
}
