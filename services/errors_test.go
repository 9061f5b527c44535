package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewDomainError(ErrorTypeNotFound, "user not found", nil)
		assert.Equal(t, "not_found: user not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("sql: no rows")
		err := NewDomainError(ErrorTypeNotFound, "user not found", cause)
		assert.Contains(t, err.Error(), "user not found")
		assert.Contains(t, err.Error(), "sql: no rows")
	})
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewDomainError(ErrorTypeInternal, "wrapped", cause)

	assert.ErrorIs(t, err, cause)
}

func TestDomainError_Is(t *testing.T) {
	// Sentinel matching survives wrapping with a cause
	withCause := NewDomainError(ErrorTypeUnauthorized, "Account is deactivated", errors.New("detail"))
	assert.ErrorIs(t, withCause, ErrAccountDeactivated)

	// Different message does not match
	other := NewDomainError(ErrorTypeUnauthorized, "Authentication failed", nil)
	assert.NotErrorIs(t, other, ErrAccountDeactivated)

	// Further wrapping still matches
	wrapped := fmt.Errorf("handler: %w", ErrAccountDeactivated)
	assert.ErrorIs(t, wrapped, ErrAccountDeactivated)
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", ErrUserNotFound, IsNotFoundError},
		{"validation", ErrInvalidInput, IsValidationError},
		{"unauthorized", ErrAccountDeactivated, IsUnauthorizedError},
		{"forbidden", ErrForbidden, IsForbiddenError},
		{"conflict", ErrDuplicateEmail, IsConflictError},
		{"internal", WrapInternal("oops", errors.New("cause")), IsInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrUserNotFound))
	assert.Equal(t, ErrorTypeUnauthorized, GetErrorType(fmt.Errorf("wrapped: %w", ErrTokenInvalid)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
}
