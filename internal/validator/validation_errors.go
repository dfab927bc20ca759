package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes a single failed rule on a single field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field errors; it satisfies error so service
// methods can return it directly.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ToValidationErrors converts go-playground validator output to our type.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors
	if err == nil {
		return out
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{
			Field:   "request",
			Message: err.Error(),
			Rule:    "struct",
		}}
	}

	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
