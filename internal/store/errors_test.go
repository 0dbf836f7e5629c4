package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"ErrUserNotFound", ErrUserNotFound, true},
		{"ErrTaskNotFound", ErrTaskNotFound, true},
		{"wrapped ErrPermissionNotFound", fmt.Errorf("has read: %w", ErrPermissionNotFound), true},
		{"ErrUsernameExists", ErrUsernameExists, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrUsernameExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create user: %w", ErrUsernameExists)))
	assert.False(t, IsDuplicateError(ErrTaskNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestEntityErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.Is(ErrTaskNotFound, ErrUserNotFound))
	assert.False(t, errors.Is(ErrUserNotFound, ErrTaskNotFound))
	assert.False(t, errors.Is(ErrPermissionNotFound, ErrTaskNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("with wrapped error", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("task", "create", "insert failed", ErrInvalidEntity)
		assert.Equal(t, "create operation on task failed: insert failed: invalid entity", err.Error())
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("user", "get", "lookup failed", nil)
		assert.Equal(t, "get operation on user failed: lookup failed", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}
