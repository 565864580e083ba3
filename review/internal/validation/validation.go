// Package validation checks review and profile input.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/go-playground/validator/v10"
)

var displayNamePattern = regexp.MustCompile(`^[가-힣a-zA-Z0-9\s_]+$`)

// Validator validates structs tagged with `validate`.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the rating and displayname rules
// registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		return ValidRating(fl.Field().Float())
	})
	_ = v.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
		return displayNamePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// ValidRating reports whether r lies in [0, 10] on a 0.5 step.
func ValidRating(r float64) bool {
	if math.IsNaN(r) || r < 0 || r > 10 {
		return false
	}
	return r*2 == math.Trunc(r*2)
}

// Struct validates s and returns the first failure as a
// *apperr.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	fe := verrs[0]
	return apperr.Invalid(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "rating":
		return "must be between 0 and 10 in steps of 0.5"
	case "displayname":
		return "may only contain letters, digits, spaces and underscores"
	default:
		return "is invalid"
	}
}
