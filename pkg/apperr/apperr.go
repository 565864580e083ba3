// Package apperr defines the error taxonomy shared by the movieticket services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetch is returned when reading external movie metadata fails.
	ErrFetch = errors.New("fetch failed")
	// ErrWrite is returned when the review store rejects a mutation.
	ErrWrite = errors.New("write failed")
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the caller does not own the document.
	ErrPermission = errors.New("permission denied")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when no valid session is present.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError describes a single form field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a new validation error for the given field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Notification is the user-facing form of an error.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notify converts err into a notification suitable for display.
func Notify(err error) Notification {
	var verr *ValidationError
	switch {
	case err == nil:
		return Notification{}
	case errors.As(err, &verr):
		return Notification{Title: "Invalid input", Message: verr.Error()}
	case errors.Is(err, ErrUnauthenticated):
		return Notification{Title: "Sign in required", Message: "Please sign in to continue."}
	case errors.Is(err, ErrPermission):
		return Notification{Title: "Not allowed", Message: "You can only change your own reviews."}
	case errors.Is(err, ErrNotFound):
		return Notification{Title: "Not found", Message: "The requested item no longer exists."}
	case errors.Is(err, ErrFetch):
		return Notification{Title: "Network error", Message: "Could not load movie information. Please try again."}
	case errors.Is(err, ErrWrite):
		return Notification{Title: "Save failed", Message: "Your changes could not be saved. Please try again."}
	default:
		return Notification{Title: "Error", Message: "Something went wrong. Please try again."}
	}
}

// HTTPStatus maps err to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
