// Package apperr defines the error kinds returned by stores and surfaced by
// handlers: validation failures, remote (database) failures, and multi-step
// writes that stopped part way.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kinds of RemoteOperationError.
const (
	KindFailed   = "failed"
	KindDenied   = "denied"
	KindNotFound = "not_found"
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Required builds a ValidationError for a blank required field.
func Required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// RemoteOperationError wraps a failure from the backing store.
type RemoteOperationError struct {
	Op   string
	Kind string
	Err  error
}

func (e *RemoteOperationError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

// Remote wraps err from operation op. Nil stays nil, errors that are already
// classified pass through, mongo.ErrNoDocuments becomes KindNotFound and
// authorization failures become KindDenied.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var re *RemoteOperationError
	var pe *PartialCompletionError
	if errors.As(err, &ve) || errors.As(err, &re) || errors.As(err, &pe) {
		return err
	}
	kind := KindFailed
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		kind = KindNotFound
	case isUnauthorized(err):
		kind = KindDenied
	}
	return &RemoteOperationError{Op: op, Kind: kind, Err: err}
}

// NotFound builds a not_found RemoteOperationError with no underlying cause.
func NotFound(op string) error {
	return &RemoteOperationError{Op: op, Kind: KindNotFound}
}

// Denied builds a denied RemoteOperationError with no underlying cause.
func Denied(op string) error {
	return &RemoteOperationError{Op: op, Kind: KindDenied}
}

// PartialCompletionError reports a multi-step write where the steps in
// Completed were applied and the step in Failed was not.
type PartialCompletionError struct {
	Op        string
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("%s: partially completed (done: %s; failed: %s): %v",
		e.Op, strings.Join(e.Completed, ", "), e.Failed, e.Err)
}

func (e *PartialCompletionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a not_found RemoteOperationError.
func IsNotFound(err error) bool {
	var re *RemoteOperationError
	return errors.As(err, &re) && re.Kind == KindNotFound
}

// IsDenied reports whether err is a denied RemoteOperationError.
func IsDenied(err error) bool {
	var re *RemoteOperationError
	return errors.As(err, &re) && re.Kind == KindDenied
}

// IsPartial reports whether err is or wraps a PartialCompletionError.
func IsPartial(err error) bool {
	var pe *PartialCompletionError
	return errors.As(err, &pe)
}

// Codes 13 (Unauthorized) and 18 (AuthenticationFailed).
func isUnauthorized(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(13) || se.HasErrorCode(18)
	}
	return false
}
