// Package validation validates structs with go-playground/validator tags and
// reports failures as *errors.AppError with per-field details.
//
//	type Options struct {
//	    Sources []string `mapstructure:"sources" validate:"required,min=1,dive,required"`
//	}
//	err := validation.Validate(opts)
package validation
