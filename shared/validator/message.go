package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid UUID",
	"oneof":    "{field} must be one of {param}",
	"enum":     "{field} is not a supported value",
	"notblank": "{field} must not be blank",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"max":      "{field} must be less than or equal to {param}",
}

// length limits on strings and collections read better as counts
var lengthMessages = map[string]string{
	"min": "{field} must contain at least {param} {unit}",
	"max": "{field} must contain at most {param} {unit}",
}

// message describes the first failing field.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	for _, fieldErr := range fieldErrors {
		if tmpl, ok := template(fieldErr); ok {
			return strings.NewReplacer(
				"{field}", fieldErr.Field(),
				"{param}", fieldErr.Param(),
				"{unit}", unit(fieldErr.Kind()),
			).Replace(tmpl)
		}
	}

	return fieldErrors.Error()
}

func template(fieldErr val.FieldError) (string, bool) {
	if unit(fieldErr.Kind()) != "" {
		if tmpl, ok := lengthMessages[fieldErr.Tag()]; ok {
			return tmpl, true
		}
	}

	tmpl, ok := messages[fieldErr.Tag()]

	return tmpl, ok
}

func unit(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return "characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "items"
	default:
		return ""
	}
}
