package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"wavelength/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request body against its `validate` tags and converts
// the first failure into a client-facing validation error.
func Struct(s any) *models.AppError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("Invalid request body")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fmt.Sprintf("%s is required", field))
	case "email":
		return models.NewValidationError(fmt.Sprintf("%s must be a valid email address", field))
	case "min":
		return models.NewValidationError(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return models.NewValidationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return models.NewValidationError(fmt.Sprintf("%s is invalid", field))
	}
}
