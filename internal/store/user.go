package store

import (
	"context"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
)

// UserStore defines the interface for user credential persistence.
type UserStore interface {
	// Create saves a new user. The caller provides the HashedPassword; the
	// store never sees or persists the plaintext. On success user.ID is set.
	// Returns ErrUsernameExists if the username is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username, including the password hash.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
