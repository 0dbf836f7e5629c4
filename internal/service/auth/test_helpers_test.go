package auth

import "time"

const (
	testSecret      = "test-secret-that-is-long-enough-for-testing"
	testWrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

// newTestTokenService creates a token service with a fixed clock.
func newTestTokenService(secret string, lifetime time.Duration, timeFunc func() time.Time) *hmacTokenService {
	return &hmacTokenService{
		signingKey:      []byte(secret),
		defaultLifetime: lifetime,
		timeFunc:        timeFunc,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
