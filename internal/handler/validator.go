package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
)

// Validator adapts go-playground/validator to Echo's Validator interface.
// Bind + Validate is the standard entry path for every request DTO.
type Validator struct{ v *validator.Validate }

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.  Failures surface as InvalidInput so
// respondError renders them as a 400 without special casing.
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return apperr.Wrap(err, apperr.KindInvalidInput, "INVALID_INPUT", err.Error())
	}
	return nil
}
