package validation

import (
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"
)

// US ZIP: 5 digits, optional plus-4.
var zipRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// New returns a configured validator with the custom validations registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// zipcode validates the AVS billing postal code format before any
	// network call is made.
	_ = v.RegisterValidation("zipcode", func(fl validatorv10.FieldLevel) bool {
		return zipRe.MatchString(fl.Field().String())
	})

	return v
}
