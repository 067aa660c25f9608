package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts a binding or validation failure into an
// ErrorDetail listing every offending field.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorDetail(ErrorCodeInvalidRequest, "Invalid request format").WithDetails(err.Error())
	}

	fields := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError(fieldName(fe), FormatFieldError(fe)))
	}

	detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
	if len(fields) == 1 {
		detail.Field = fields[0].Field
		detail.Message = fields[0].Message
	}
	return detail
}

func fieldName(fe validator.FieldError) string {
	f := fe.Field()
	if f == "" {
		return ""
	}
	return strings.ToLower(f[:1]) + f[1:]
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	case "bpsuemail":
		return field + " must be an institutional email address"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "eqfield":
		return field + " must match " + fe.Param()
	default:
		return field + " validation failed: " + fe.Tag()
	}
}
