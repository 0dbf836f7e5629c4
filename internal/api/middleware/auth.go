package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Zapzatron/ToDo-List-API/internal/api/shared"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
)

// TokenQueryParam is the query parameter checked when no Authorization
// header is sent.
const TokenQueryParam = "token"

// invalidTokenMessage is the only message clients see for an unusable token.
const invalidTokenMessage = "Could not validate credentials"

// Authenticator resolves a bearer token to the actor it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate resolves the request's token and adds the actor to the
// request context. Every token failure is answered with 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, invalidTokenMessage, auth.ErrInvalidToken)
			return
		}

		actor, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, invalidTokenMessage, err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithActor(r.Context(), *actor)

		log := logger.FromContextOrDefault(ctx, m.logger).With(slog.Int64("user_id", actor.ID))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken returns the bearer token from the Authorization header, or
// from the token query parameter when the header is absent.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get(TokenQueryParam)
}
