package api

import (
	"time"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
)

// TokenTypeBearer is the only token type the API issues.
const TokenTypeBearer = "bearer"

// RegisterRequest defines the payload for the user registration endpoint.
// Length limits are enforced in bytes by domain.NewUser.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CredentialsRequest defines the payload for the credential check endpoint.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest defines the payload for the token endpoint.
// TTLMinutes is optional; zero selects the configured default and the
// upper bound is auth.MaxTTLMinutes.
type TokenRequest struct {
	Username   string `json:"username"              validate:"required"`
	Password   string `json:"password"              validate:"required"`
	TTLMinutes int    `json:"ttl_minutes,omitempty" validate:"gte=0,lte=525600"`
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	TTLMinutes  int    `json:"ttl_minutes"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// UserResponse is the public view of a user. The password hash is never included.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TaskRequest defines the payload for creating or updating a task.
// OwnerID is only honoured on create, and must name the caller. Length
// limits are enforced in bytes by domain.NewTask.
type TaskRequest struct {
	Title       string `json:"title"              validate:"required"`
	Description string `json:"description"`
	OwnerID     *int64 `json:"owner_id,omitempty"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id"`
}

// PermissionRequest defines the payload for the permission endpoint.
// Omitted flags keep their stored value, or false for a new row.
type PermissionRequest struct {
	GrantedUserID int64 `json:"granted_user_id" validate:"required,gt=0"`
	CanRead       *bool `json:"can_read,omitempty"`
	CanUpdate     *bool `json:"can_update,omitempty"`
}

// PermissionResponse is the stored permission row after an update.
type PermissionResponse struct {
	TaskID    int64 `json:"task_id"`
	UserID    int64 `json:"user_id"`
	CanRead   bool  `json:"can_read"`
	CanUpdate bool  `json:"can_update"`
}

// StatusResponse is the body of endpoints that only report success.
type StatusResponse struct {
	Status string `json:"status"`
}

var statusSuccess = StatusResponse{Status: "success"}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		OwnerID:     t.OwnerID,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func permissionToResponse(p *domain.Permission) PermissionResponse {
	return PermissionResponse{
		TaskID:    p.TaskID,
		UserID:    p.UserID,
		CanRead:   p.CanRead,
		CanUpdate: p.CanUpdate,
	}
}

func tokenToResponse(t *auth.Token) TokenResponse {
	return TokenResponse{
		AccessToken: t.Value,
		TokenType:   TokenTypeBearer,
		TTLMinutes:  t.TTLMinutes,
		ExpiresAt:   t.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
