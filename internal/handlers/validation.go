package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one request field that failed binding rules
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors flattens validator errors into per-field messages.
// Errors that did not come from the validator, such as malformed JSON, yield
// a single entry for the request body.
func ParseValidationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err == nil {
			return nil
		}
		return []ValidationError{{Field: "body", Message: "Request body is not valid JSON"}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   jsonName(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return out
}

// jsonName lowercases the first letter so messages use the request's field names
func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func validationMessage(fe validator.FieldError) string {
	name := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return name + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return name + " must be at least " + fe.Param() + " characters"
	case "max":
		return name + " must not exceed " + fe.Param() + " characters"
	default:
		return name + " is invalid"
	}
}
