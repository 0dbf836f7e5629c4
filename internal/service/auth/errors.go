package auth

import "errors"

// ErrInvalidToken is the single outcome for every token that cannot be
// trusted: missing, malformed, badly signed, expired or not yet valid.
// Callers are never told which.
var ErrInvalidToken = errors.New("invalid authentication token")
