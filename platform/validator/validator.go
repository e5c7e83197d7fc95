// Package validator wraps go-playground validation behind a small
// injectable type. This is part of the platform layer.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates request DTOs against their struct tags.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator. Custom tags are added with RegisterValidation.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates a struct based on its validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function under tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
