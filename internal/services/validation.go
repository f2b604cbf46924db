package services

import (
	"fmt"

	"eshop/internal/models"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the "objectid" tag registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return models.IsValidID(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateStruct runs struct validation and converts failures into a
// ValidationError carrying per-field messages.
func ValidateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &Error{Kind: KindValidation, Message: "invalid request", Err: err}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Namespace()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	first := validationErrors[0]
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("field '%s' failed on the '%s' tag", first.Namespace(), first.Tag()),
		Fields:  fields,
	}
}
