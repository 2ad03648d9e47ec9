// Package params reads path and query parameters shared by the /api handlers.
package params

import (
	"net/http"
	"strings"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID parses the chi URL parameter key as an ObjectID.
func ObjectID(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid(key, "is not a valid ID")
	}
	return id, nil
}

// Bool reads a query flag. "1", "true", "yes" and "on" are true.
func Bool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
