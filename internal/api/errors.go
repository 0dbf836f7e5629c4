package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Zapzatron/ToDo-List-API/internal/api/shared"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/service"
	"github.com/Zapzatron/ToDo-List-API/internal/service/access"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
// Every authentication and authorization failure is a 403; the API never
// answers 401.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Credential, token and permission failures
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, service.ErrDuplicateUser),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, access.ErrNotAuthorized):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case domain.IsValidationError(err),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err. Internal details
// such as SQL or driver errors never reach the response.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return "Could not validate credentials"

	case errors.Is(err, service.ErrDuplicateUser):
		return "User already exists"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid username or password"

	case errors.Is(err, access.ErrNotAuthorized):
		return "Not enough permissions"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.As(err, &validationErr):
		return "Invalid request: " + validationErr.Error()

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case domain.IsValidationError(err):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status and safe message, logs the full error
// and writes the error response. A non-empty fallback replaces the generic
// message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if errors.Is(err, service.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fieldErr.Field(), getValidationTagMessage(fieldErr.Tag()))
	}

	errMsg := err.Error()

	// Example format: "Key: 'TokenRequest.Username' Error:Field validation for 'Username' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt", "gte":
		return "must be positive"
	case "lt", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}
