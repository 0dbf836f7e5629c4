package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Zapzatron/ToDo-List-API/internal/config"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
)

const minSecretLength = 32

// MaxTTLMinutes caps a token's lifetime at one year.
const MaxTTLMinutes = 365 * 24 * 60

// hmacTokenService is a TokenService using HMAC-SHA256 signed JWTs.
type hmacTokenService struct {
	signingKey      []byte
	defaultLifetime time.Duration
	timeFunc        func() time.Time // Injectable for testing
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if cfg.TokenLifetimeMinutes <= 0 || cfg.TokenLifetimeMinutes > MaxTTLMinutes {
		return nil, fmt.Errorf("token lifetime must be between 1 and %d minutes, got %d",
			MaxTTLMinutes, cfg.TokenLifetimeMinutes)
	}

	return &hmacTokenService{
		signingKey:      []byte(cfg.JWTSecret),
		defaultLifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		timeFunc:        time.Now,
	}, nil
}

// Issue creates a signed access token for username.
func (s *hmacTokenService) Issue(ctx context.Context, username string, ttlMinutes int) (*Token, error) {
	log := logger.FromContext(ctx)

	if username == "" {
		return nil, errors.New("cannot issue a token without a username")
	}

	if ttlMinutes > MaxTTLMinutes {
		return nil, domain.NewValidationError("ttl_minutes",
			fmt.Sprintf("must not exceed %d", MaxTTLMinutes), domain.ErrValidation)
	}

	lifetime := s.defaultLifetime
	if ttlMinutes > 0 {
		lifetime = time.Duration(ttlMinutes) * time.Minute
	}

	now := s.timeFunc()
	expiresAt := now.Add(lifetime)

	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err,
			"username", username,
			"signing_method", jwt.SigningMethodHS256.Name)
		return nil, fmt.Errorf("failed to sign access token with HMAC-SHA256: %w", err)
	}

	return &Token{
		Value:      signed,
		TTLMinutes: int(lifetime / time.Minute),
		ExpiresAt:  expiresAt,
	}, nil
}

// Verify validates a token and returns its subject.
func (s *hmacTokenService) Verify(ctx context.Context, tokenString string) (string, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return "", ErrInvalidToken
	}

	now := s.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		// The reason is logged for operators and then collapsed.
		reason := "other"
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			reason = "expired"
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			reason = "not_yet_valid"
		case errors.Is(err, jwt.ErrTokenMalformed):
			reason = "malformed"
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			reason = "bad_signature"
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			reason = "missing_claim"
		}
		log.Debug("token verification failed",
			"reason", reason,
			"error", err)
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		log.Debug("token verification failed", "reason", "empty_subject")
		return "", ErrInvalidToken
	}

	log.Debug("token verified",
		"username", claims.Subject,
		"token_id", claims.ID)

	return claims.Subject, nil
}
