package config

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
)

// registerByteSize adds a custom validator accepting human readable, non-zero byte sizes.
func registerByteSize(validate *validator.Validate) error {
	if err := validate.RegisterValidation("bytesize", validateByteSize); err != nil {
		return fmt.Errorf("registering bytesize validation: %w", err)
	}

	return nil
}

// validateByteSize checks that the field parses as a byte size greater than zero.
func validateByteSize(fl validator.FieldLevel) bool {
	field := fl.Field()

	if field.Kind() != reflect.String {
		return false
	}

	size, err := humanize.ParseBytes(field.String())

	return err == nil && size > 0
}
