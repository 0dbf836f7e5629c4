package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the access service.
const (
	TaskCreated       = "task.created"
	TaskUpdated       = "task.updated"
	TaskDeleted       = "task.deleted"
	PermissionGranted = "permission.granted"
	UserRegistered    = "user.registered"
)

// AccessEvent records one change made by an authenticated user.
type AccessEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the constants above
	Type string `json:"type"`

	// ActorID is the user who made the change
	ActorID int64 `json:"actor_id"`

	// TaskID is zero for events not tied to a task
	TaskID int64 `json:"task_id,omitempty"`

	// Payload holds event-specific details serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *AccessEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewAccessEvent creates an AccessEvent. A nil payload is omitted.
func NewAccessEvent(eventType string, actorID, taskID int64, payload interface{}) (*AccessEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &AccessEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ActorID:   actorID,
		TaskID:    taskID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *AccessEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *AccessEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *AccessEvent) error { return nil }
