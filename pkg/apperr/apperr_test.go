package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create review: %w", Invalid("rating", "must be between 0 and 10"))
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "rating", verr.Field)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Invalid("reviewTitle", "required"), http.StatusBadRequest},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"permission", fmt.Errorf("delete: %w", ErrPermission), http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"fetch", ErrFetch, http.StatusBadGateway},
		{"write wrapping permission", fmt.Errorf("%w: %w", ErrWrite, ErrPermission), http.StatusForbidden},
		{"write", ErrWrite, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNotify(t *testing.T) {
	assert.Equal(t, Notification{}, Notify(nil))
	assert.Equal(t, "Not allowed", Notify(ErrPermission).Title)
	assert.Equal(t, "Save failed", Notify(fmt.Errorf("add: %w", ErrWrite)).Title)
	assert.Equal(t, "Invalid input", Notify(Invalid("displayName", "already in use")).Title)
	assert.NotEmpty(t, Notify(errors.New("x")).Message)
}
