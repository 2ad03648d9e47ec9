// Package inputval validates decoded request payloads with struct tags and
// turns the failures into readable messages.
//
// Field names in results come from the json tag; messages use the label tag
// when present:
//
//	type registerInput struct {
//	    Email    string `json:"email" validate:"required,email" label:"E-mail"`
//	    Password string `json:"password" validate:"required,min=6" label:"Password"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/missio/internal/app/system/apperr"
	"github.com/dalemusser/missio/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func v() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = validate.RegisterValidation("spiritualstatus", func(fl validator.FieldLevel) bool {
			return models.IsValidSpiritualStatus(fl.Field().String())
		})
	})
	return validate
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns the first failure as an *apperr.ValidationError, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &apperr.ValidationError{Field: r.Errors[0].Field, Message: r.Errors[0].Message}
}

// Validate checks s against its validate tags.
func Validate(s any) *Result {
	res := &Result{}
	err := v().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Message: message(fe, label(t, fe)),
		})
	}
	return res
}

// IsValidEmail reports whether s is a bare e-mail address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return v().Var(s, "email") == nil
}

// IsValidObjectID reports whether s (trimmed) is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

func label(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
		}
	}
	return fe.Field()
}

func message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "A valid email address is required."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match.", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "excludesall":
		return fmt.Sprintf("%s must not contain %q.", label, fe.Param())
	case "objectid":
		return fmt.Sprintf("%s is not a valid ID.", label)
	case "spiritualstatus":
		return fmt.Sprintf("%s must be curious, open or decided.", label)
	}
	return fmt.Sprintf("%s is invalid.", label)
}
