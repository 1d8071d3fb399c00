package validator

import (
	"errors"
	"fmt"
	"strings"

	"eventbook/pkg/logger"
	"eventbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type UserValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *UserValidator) ValidateRegister(req *model.RegisterRequest) error {
	return v.translate(v.validate.Struct(req))
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	return v.translate(v.validate.Struct(req))
}

func (v *UserValidator) ValidateUpdate(req *model.UpdateProfileRequest) error {
	return v.translate(v.validate.Struct(req))
}

func (v *UserValidator) translate(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: message})
	}
	return out
}
