package api

import (
	"log/slog"
	"net/http"

	"github.com/Zapzatron/ToDo-List-API/internal/api/shared"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
)

// AuthHandler handles registration and token requests.
type AuthHandler struct {
	users  service.UserService
	tokens auth.TokenService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, tokens auth.TokenService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /users/create.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GetToken handles POST /users/get_token.
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, ok := h.checkCredentials(w, r, req.Username, req.Password)
	if !ok {
		return
	}

	token, err := h.tokens.Issue(r.Context(), user.Username, req.TTLMinutes)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	log.Debug("token issued",
		slog.Int64("user_id", user.ID),
		slog.Int("ttl_minutes", token.TTLMinutes))
	shared.RespondWithJSON(w, r, http.StatusOK, tokenToResponse(token))
}

// CheckAuth handles POST /tasks/check_auth. It only reports whether the
// credentials are valid.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, ok := h.checkCredentials(w, r, req.Username, req.Password); !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statusSuccess)
}

// CheckTokenAuth handles /users/check_token_auth and returns the user the
// request's token resolves to.
func (h *AuthHandler) CheckTokenAuth(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromContext(r)
	if !ok {
		HandleAPIError(w, r, auth.ErrInvalidToken, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{ID: actor.ID, Username: actor.Username})
}

// checkCredentials verifies a username and password and writes the error
// response when they do not match.
func (h *AuthHandler) checkCredentials(
	w http.ResponseWriter,
	r *http.Request,
	username, password string,
) (*domain.User, bool) {
	user, ok, err := h.users.VerifyCredentials(r.Context(), username, password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return nil, false
	}
	if !ok {
		HandleAPIError(w, r, service.ErrInvalidCredentials, "")
		return nil, false
	}
	return user, true
}
