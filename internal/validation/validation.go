// Package validation checks request payloads against their declared
// schemas. All violations for a payload are reported together in one
// error rather than stopping at the first.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/trailpine/campground/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names as their json tags so messages match what the
	// client actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates payload against its declared tags. On failure it
// returns a single CodeValidation error joining every violation. Fields
// not declared on the payload are never checked; extra input is ignored
// at decode time.
func Struct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Internal(err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, describe(fe))
	}
	return apperrors.Validation(messages...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%q must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%q must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%q must be %s or more", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%q must be %s or less", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%q must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("%q must be a valid URL", fe.Field())
	case "longitude":
		return fmt.Sprintf("%q must be a valid longitude", fe.Field())
	case "latitude":
		return fmt.Sprintf("%q must be a valid latitude", fe.Field())
	default:
		return fmt.Sprintf("%q failed %s validation", fe.Field(), fe.Tag())
	}
}
