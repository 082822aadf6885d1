package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"tutorhub/config"
	"tutorhub/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// Enumerated is implemented by field types that validate themselves against configuration.
// Fields of such types opt in with the enum tag.
type Enumerated interface {
	Validate(cfg *config.Config) error
}

func init() {
	cfg := config.Get()

	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)

	must(validate.RegisterValidation("enum", func(fl val.FieldLevel) bool {
		if !fl.Field().CanInterface() {
			return false
		}

		enum, ok := fl.Field().Interface().(Enumerated)

		return ok && enum.Validate(cfg) == nil
	}))

	must(validate.RegisterValidation("notblank", func(fl val.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && strings.TrimSpace(fl.Field().String()) != ""
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}

	return name
}

// Validate decodes a JSON body into data and validates it. Both malformed JSON
// and rule violations come back as 400 failures.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
