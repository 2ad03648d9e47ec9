// Package respond writes and reads JSON bodies for the /api handlers.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/apperr"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// NoContent writes status 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Decode reads a JSON body into v. Malformed or oversized bodies come back as
// a ValidationError so handlers can pass them straight to the error writer.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Invalid("", "request body is empty")
		case errors.As(err, &mbe):
			return apperr.Invalid("", "request body is too large")
		default:
			var ute *json.UnmarshalTypeError
			if errors.As(err, &ute) && ute.Field != "" {
				return apperr.Invalid(ute.Field, "has the wrong type")
			}
			return apperr.Invalid("", "request body is not valid JSON")
		}
	}
	return nil
}
