package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Draft is the user-editable content of a ticket before submission.
// Category and Priority are advisory and may be left empty; the store
// fills them in.
type Draft struct {
	Title       string   `json:"title" validate:"required,maxrunes=200"`
	Description string   `json:"description" validate:"required"`
	Category    Category `json:"category,omitempty" validate:"omitempty,category"`
	Priority    Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	Status      Status   `json:"status" validate:"required,status"`
}

// NewDraft returns an empty draft in the open state.
func NewDraft() Draft {
	return Draft{Status: StatusOpen}
}

// ValidationError reports the draft fields that failed client-side checks.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is one failed check.
type FieldError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		switch f.Rule {
		case "required":
			parts = append(parts, f.Field+" is required")
		case "maxrunes":
			parts = append(parts, fmt.Sprintf("%s must be at most %d characters", f.Field, MaxTitleLength))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid (%s)", f.Field, f.Rule))
		}
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the ticket enum rules
// registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
			return Priority(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("maxrunes", func(fl validator.FieldLevel) bool {
			return utf8.RuneCountInString(fl.Field().String()) <= MaxTitleLength
		})
		validate = v
	})
	return validate
}

// Validate checks the draft before any request is issued. Whitespace-only
// title or description counts as empty.
func (d Draft) Validate() error {
	trimmed := d
	trimmed.Title = strings.TrimSpace(d.Title)
	trimmed.Description = strings.TrimSpace(d.Description)
	if trimmed.Status == "" {
		trimmed.Status = StatusOpen
	}
	return toValidationError(Validator().Struct(trimmed))
}

// Validate checks that a decoded ticket carries every expected field.
func (t Ticket) Validate() error {
	return toValidationError(Validator().Struct(t))
}

// Validate checks that a decoded suggestion carries both fields.
func (s Suggestion) Validate() error {
	return toValidationError(Validator().Struct(s))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
