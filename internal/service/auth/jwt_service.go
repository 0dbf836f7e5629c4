package auth

import (
	"context"
	"time"
)

// TokenService issues and verifies time-bounded identity tokens.
type TokenService interface {
	// Issue creates a signed token whose subject is username and which expires
	// ttlMinutes from now. A ttlMinutes of zero or less selects the configured
	// default lifetime.
	Issue(ctx context.Context, username string, ttlMinutes int) (*Token, error)

	// Verify checks signature and expiry and returns the username the token was
	// issued for. Any failure returns ErrInvalidToken.
	Verify(ctx context.Context, token string) (string, error)
}

// Token is an issued access token.
type Token struct {
	Value      string
	TTLMinutes int
	ExpiresAt  time.Time
}
