// Package validation validates form input structs with go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their form tag name.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "" {
			name = fld.Tag.Get("json")
		}
		name, _, _ = strings.Cut(name, ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// bcrypt rejects secrets longer than 72 bytes, which max counts in runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error with
// one message per failing field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		fieldErrors := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			fieldErrors[e.Field()] = friendlyMessage(e)
		}
		return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
	}
	return nil
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", e.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", e.Param())
	case "maxbytes":
		return fmt.Sprintf("Field cannot be longer than %s bytes.", e.Param())
	case "eqfield":
		return fmt.Sprintf("Field must be equal to %s.", strings.ToLower(e.Param()))
	default:
		return "Invalid value."
	}
}
