package domain

import (
	"strings"
	"time"
)

const (
	// MaxUsernameLength bounds the stored username.
	MaxUsernameLength = 64

	// MaxPasswordBytes is the bcrypt input limit; longer passwords are rejected
	// rather than silently truncated.
	MaxPasswordBytes = 72
)

// User represents a registered account.
// The password hash never leaves the service boundary.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext, only set during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// NewUser creates a User from registration input.
// The caller must hash Password before the user is stored.
func NewUser(username, password string) (*User, error) {
	user := &User{
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the username and whichever password form is present.
func (u *User) Validate() error {
	if u.Username == "" {
		return NewValidationError("username", "cannot be empty", ErrEmptyContent)
	}
	if strings.TrimSpace(u.Username) != u.Username {
		return NewValidationError("username", "cannot start or end with whitespace", ErrValidation)
	}
	if len(u.Username) > MaxUsernameLength {
		return NewValidationError("username", "is too long", ErrContentTooLong)
	}

	if u.Password != "" {
		if len(u.Password) > MaxPasswordBytes {
			return NewValidationError("password", "is too long", ErrContentTooLong)
		}
		return nil
	}

	if u.HashedPassword == "" {
		return NewValidationError("password", "cannot be empty", ErrEmptyContent)
	}

	return nil
}

// Actor is the identity resolved from a verified token for the current operation.
type Actor struct {
	ID       int64
	Username string
}

// ActorFromUser builds the actor for an authenticated user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Username: u.Username}
}
