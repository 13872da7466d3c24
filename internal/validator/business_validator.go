package validator

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/arteterapia/workshop-service/internal/models"
)

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// BusinessValidator handles business rule validation on top of struct tags.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

func (bv *BusinessValidator) registerBusinessRules() {
	// Minimum eight characters with at least one letter and one digit.
	bv.validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < 8 {
			return false
		}
		var hasLetter, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLetter && hasDigit
	})

	bv.validate.RegisterValidation("username_format", func(fl validator.FieldLevel) bool {
		return usernameRE.MatchString(fl.Field().String())
	})

	// Answers must come from the fixed observation vocabulary.
	bv.validate.RegisterValidation("answer_value", func(fl validator.FieldLevel) bool {
		return models.IsValidAnswer(fl.Field().String())
	})
}

// Validate validates a struct against business rules.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts validator.ValidationErrors into our error slice.
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			errors = append(errors, ValidationError{
				Field:   fe.Field(),
				Message: messageFor(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errors
	}
	return ValidationErrors{{Field: "", Message: err.Error()}}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	case "password_strength":
		return "must be at least 8 characters and contain a letter and a digit"
	case "username_format":
		return "may only contain letters, digits, dots, dashes and underscores"
	case "answer_value":
		return "must be one of: yes, no, not_sure, not_applicable"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
