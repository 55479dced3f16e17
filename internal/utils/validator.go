// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("agent_code", validateAgentCode)
	validate.RegisterValidation("category_code", validateCategoryCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAgentCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()

	// Agent codes are uppercase alphanumeric, 2-50 characters
	if len(code) < 2 || len(code) > 50 {
		return false
	}

	matched, _ := regexp.MatchString("^[A-Z0-9_]+$", code)
	return matched
}

func validateCategoryCode(fl validator.FieldLevel) bool {
	category := fl.Field().String()

	// Category codes like "casino", "sports", "slot_live"
	if len(category) < 2 || len(category) > 50 {
		return false
	}

	matched, _ := regexp.MatchString("^[a-z][a-z0-9_]*$", category)
	return matched
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "agent_code":
		return "Agent code must be 2-50 uppercase letters, numbers, or underscores"
	case "category_code":
		return "Category must be a lowercase code such as 'casino' or 'sports'"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
