package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice", "pw1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID != 0 {
		t.Errorf("Expected unassigned ID, got %d", user.ID)
	}

	if user.Username != "alice" {
		t.Errorf("Expected username alice, got %s", user.Username)
	}

	if user.Password != "pw1" {
		t.Errorf("Expected plaintext password to be kept for hashing, got %q", user.Password)
	}

	if user.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr error
	}{
		{
			name: "plaintext password",
			user: User{Username: "alice", Password: "secret"},
		},
		{
			name: "hashed password only",
			user: User{Username: "alice", HashedPassword: "$2a$10$hash"},
		},
		{
			name:    "empty username",
			user:    User{Password: "secret"},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "padded username",
			user:    User{Username: " alice", Password: "secret"},
			wantErr: ErrValidation,
		},
		{
			name:    "username too long",
			user:    User{Username: strings.Repeat("a", MaxUsernameLength+1), Password: "secret"},
			wantErr: ErrContentTooLong,
		},
		{
			name:    "password too long",
			user:    User{Username: "alice", Password: strings.Repeat("p", MaxPasswordBytes+1)},
			wantErr: ErrContentTooLong,
		},
		{
			name:    "no password at all",
			user:    User{Username: "alice"},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !IsValidationError(err) {
				t.Errorf("Expected a validation error, got %T", err)
			}
		})
	}
}

func TestActorFromUser(t *testing.T) {
	actor := ActorFromUser(&User{ID: 7, Username: "bob", HashedPassword: "x"})
	if actor.ID != 7 || actor.Username != "bob" {
		t.Errorf("Unexpected actor %+v", actor)
	}
}
