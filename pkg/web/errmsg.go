package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GetErrorMsg returns a human readable message for the first failed validation.
func GetErrorMsg(ve validator.ValidationErrors) string {
	field := ve[0]

	switch field.Tag() {
	case "required":
		return field.Field() + " is required"
	case "email":
		return field.Field() + " must be a valid email address"
	case "alphanum":
		return field.Field() + " must contain only letters and numbers"
	case "numeric":
		return field.Field() + " must be numeric"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field.Field(), field.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field.Field(), field.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field.Field(), field.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field.Field(), field.Param())
	}

	return field.Field() + " is invalid"
}
