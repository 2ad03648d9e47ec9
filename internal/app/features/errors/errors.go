// Package errors writes the JSON error responses of the /api handlers and
// logs the failures behind them.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/app/system/respond"
	"go.uber.org/zap"
)

// Error codes returned in the "error" field.
const (
	CodeValidation       = "validation"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodePartial          = "partial"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error     string   `json:"error"`
	Field     string   `json:"field,omitempty"`
	Message   string   `json:"message,omitempty"`
	Partial   bool     `json:"partial,omitempty"`
	Completed []string `json:"completed,omitempty"`
	Failed    string   `json:"failed,omitempty"`
}

// ErrorLogger maps store errors to HTTP responses.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Write classifies err and answers with the matching status:
//
//	ValidationError         → 400
//	RemoteOperationError    → 403 (denied), 404 (not_found), 500 (failed)
//	PartialCompletionError  → 500 with partial=true and the step lists
//	anything else           → 500
//
// op names the failed operation in the log line.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *apperr.ValidationError
	var pe *apperr.PartialCompletionError
	switch {
	case stderrors.As(err, &ve):
		e.LogBadRequest(w, r, op, err, ve.Field, ve.Message)
	case apperr.IsDenied(err):
		e.Log.Info(op+": denied", requestFields(r, err)...)
		respond.JSON(w, http.StatusForbidden, Body{Error: CodeForbidden})
	case apperr.IsNotFound(err):
		e.Log.Debug(op+": not found", requestFields(r, err)...)
		respond.JSON(w, http.StatusNotFound, Body{Error: CodeNotFound})
	case stderrors.As(err, &pe):
		e.Log.Error(op+": partially completed", append(requestFields(r, err),
			zap.Strings("completed", pe.Completed),
			zap.String("failed", pe.Failed))...)
		respond.JSON(w, http.StatusInternalServerError, Body{
			Error:     CodePartial,
			Message:   "The operation did not finish. Some changes were saved.",
			Partial:   true,
			Completed: pe.Completed,
			Failed:    pe.Failed,
		})
	default:
		e.LogServerError(w, r, op, err, "A database error occurred.")
	}
}

// LogBadRequest logs at info and writes a 400 validation body.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, op string, err error, field, msg string) {
	e.Log.Info(op, requestFields(r, err)...)
	respond.JSON(w, http.StatusBadRequest, Body{Error: CodeValidation, Field: field, Message: msg})
}

// LogServerError logs at error and writes a 500 body with a user-facing msg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error, msg string) {
	e.Log.Error(op, requestFields(r, err)...)
	respond.JSON(w, http.StatusInternalServerError, Body{Error: CodeInternal, Message: msg})
}

// TooManyRequests writes a 429 with a user-facing msg.
func (e *ErrorLogger) TooManyRequests(w http.ResponseWriter, r *http.Request, op, msg string) {
	e.Log.Warn(op+": rate limited", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
	respond.JSON(w, http.StatusTooManyRequests, Body{Error: CodeRateLimited, Message: msg})
}

// Forbidden writes a bare 403.
func (e *ErrorLogger) Forbidden(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusForbidden, Body{Error: CodeForbidden})
}

// NotFound is the router's fallback handler.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, Body{Error: CodeNotFound})
}

// MethodNotAllowed is the router's 405 handler.
func (e *ErrorLogger) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, Body{Error: CodeMethodNotAllowed})
}

func requestFields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
}
