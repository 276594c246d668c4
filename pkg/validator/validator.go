package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
)

// TranslateBindingError converts a gin binding failure into a validation
// AppError carrying one message per failed field. Non-validator errors
// (malformed JSON and the like) collapse into a single generic message.
func TranslateBindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("invalid request body")
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fieldName(fe),
			Message: messageFor(fe),
		})
	}
	return apperrors.Validation("validation failed", fields...)
}

func fieldName(fe validator.FieldError) string {
	// Namespace is Struct.Field; report the leaf in lower camel to match
	// the JSON payload keys.
	name := fe.Field()
	if name == "" {
		return "body"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldName(fe))
	case "email":
		return fmt.Sprintf("%s must be a valid email", fieldName(fe))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fieldName(fe), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fieldName(fe), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName(fe), strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid", fieldName(fe))
	}
}
