package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError is a binding or validation failure reported as 400.
type requestError struct {
	message string
	fields  map[string]string
}

func (e requestError) Error() string { return e.message }

// bindAndValidate decodes the request body into dest and checks its
// validate tags.
func bindAndValidate(c echo.Context, dest any) error {
	if err := c.Bind(dest); err != nil {
		return requestError{message: "invalid payload"}
	}
	if err := validate.Struct(dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return requestError{message: "invalid payload"}
		}
		messages := make([]string, 0, len(fieldErrs))
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			msg := validationMessage(fe)
			messages = append(messages, msg)
			fields[fe.Field()] = msg
		}
		return requestError{message: strings.Join(messages, "; "), fields: fields}
	}
	return nil
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "gte":
		return err.Field() + " must be at least " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "uuid":
		return err.Field() + " must be a UUID"
	default:
		return err.Field() + " is invalid"
	}
}
