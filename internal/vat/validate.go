package vat

import (
	validator "github.com/go-playground/validator/v10"
)

// CountryValidator checks that a code is a real ISO 3166-1 alpha-2 country.
type CountryValidator struct {
	v *validator.Validate
}

// NewCountryValidator constructs a CountryValidator.
func NewCountryValidator() CountryValidator {
	return CountryValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns an error when code is not an upper-case alpha-2 country code.
func (c CountryValidator) Validate(code string) error {
	v := c.v
	if v == nil {
		v = validator.New()
	}
	return v.Var(code, "required,len=2,uppercase,iso3166_1_alpha2")
}

// Struct validates a tagged struct.
func (c CountryValidator) Struct(s any) error {
	v := c.v
	if v == nil {
		v = validator.New()
	}
	return v.Struct(s)
}
