package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dengueguard/monitor/vitals"
)

// RequestValidator validates bound request bodies using their struct tags
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() (*RequestValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("notfuture", notFuture); err != nil {
		return nil, err
	}

	return &RequestValidator{
		validate: validate,
	}, nil
}

func (r *RequestValidator) Validate(i any) error {
	return r.validate.Struct(i)
}

func notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && !vitals.IsFuture(t, time.Now())
}
