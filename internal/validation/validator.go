// Package validation wraps go-playground/validator with form-field names and
// user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/bindery/internal/domain"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their `form` tag name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate checks s and returns a *domain.ValidationError on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return &domain.ValidationError{Fields: fields}
}

// friendlyMessage is displayed next to the field, so it does not name it.
func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Ce champ est obligatoire."
	case "max":
		return fmt.Sprintf("Ce champ ne doit pas dépasser %s caractères.", e.Param())
	case "min":
		return fmt.Sprintf("Ce champ doit contenir au moins %s élément(s).", e.Param())
	default:
		return "Ce champ est invalide."
	}
}
