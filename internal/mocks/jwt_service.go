package mocks

import (
	"context"
	"time"

	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	// IssueFn allows test cases to mock the Issue behavior
	IssueFn func(ctx context.Context, username string, ttlMinutes int) (*auth.Token, error)

	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, token string) (string, error)

	// Default values used when functions aren't explicitly defined.
	// With no defaults, Issue returns "token-<username>" and Verify
	// accepts exactly those tokens.
	Token     string
	Username  string
	Err       error
	VerifyErr error
}

var _ auth.TokenService = (*MockTokenService)(nil)

const mockTokenPrefix = "token-"

// Issue implements the auth.TokenService interface
func (m *MockTokenService) Issue(ctx context.Context, username string, ttlMinutes int) (*auth.Token, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, username, ttlMinutes)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	if ttlMinutes <= 0 {
		ttlMinutes = 30
	}
	value := m.Token
	if value == "" {
		value = mockTokenPrefix + username
	}
	return &auth.Token{
		Value:      value,
		TTLMinutes: ttlMinutes,
		ExpiresAt:  time.Now().UTC().Add(time.Duration(ttlMinutes) * time.Minute),
	}, nil
}

// Verify implements the auth.TokenService interface
func (m *MockTokenService) Verify(ctx context.Context, token string) (string, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	if m.VerifyErr != nil {
		return "", m.VerifyErr
	}
	if m.Username != "" {
		return m.Username, nil
	}
	if len(token) > len(mockTokenPrefix) && token[:len(mockTokenPrefix)] == mockTokenPrefix {
		return token[len(mockTokenPrefix):], nil
	}
	return "", auth.ErrInvalidToken
}
