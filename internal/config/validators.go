package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"

	"github.com/idelchi/filecrypt/internal/encryption"
)

// registerValidations adds the custom validations with their messages and label based field names.
func registerValidations(validator *validator.Validator) error {
	if err := validator.RegisterValidationAndTranslation(
		"exclusive",
		validateExclusive,
		"{0} is mutually exclusive with --{1}",
	); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	if err := validator.RegisterValidationAndTranslation(
		"algorithm",
		validateAlgorithm,
		fmt.Sprintf("{0} names an unknown algorithm, expected one of %v", encryption.Algorithms()),
	); err != nil {
		return fmt.Errorf("registering algorithm validation: %w", err)
	}

	validator.Validator().RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	return nil
}

// fieldByKey returns the field of parent whose mapstructure key is key.
func fieldByKey(parent reflect.Value, key string) reflect.Value {
	parent = reflect.Indirect(parent)

	if parent.Kind() != reflect.Struct {
		return reflect.Value{}
	}

	for i := range parent.NumField() {
		if parent.Type().Field(i).Tag.Get("mapstructure") == key {
			return parent.Field(i)
		}
	}

	return reflect.Value{}
}

// validateExclusive checks that the field and the one keyed by the parameter are not both set.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	otherField := fieldByKey(fl.Parent(), fl.Param())

	if !field.IsValid() || !otherField.IsValid() {
		return true
	}

	return field.IsZero() || otherField.IsZero()
}

// validateAlgorithm checks that the field names a known algorithm tag.
func validateAlgorithm(fl validator.FieldLevel) bool {
	_, err := encryption.ParseAlgorithm(fl.Field().String())

	return err == nil
}
