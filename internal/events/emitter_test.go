package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	HandlerError error
	HandledCount int
	LastEvent    *AccessEvent
	mu           sync.Mutex
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *AccessEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewAccessEvent(TaskCreated, 1, 10, nil)
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewAccessEvent(TaskUpdated, 1, 10, map[string]string{"title": "new"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		event, err := NewAccessEvent(TaskDeleted, 1, 10, nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
	})
}

func TestNewAccessEvent(t *testing.T) {
	t.Parallel()

	event, err := NewAccessEvent(PermissionGranted, 1, 5, map[string]any{"granted_user_id": 2, "can_read": true})
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, [16]byte(event.ID))
	assert.Equal(t, int64(1), event.ActorID)
	assert.Equal(t, int64(5), event.TaskID)

	var payload struct {
		GrantedUserID int64 `json:"granted_user_id"`
		CanRead       bool  `json:"can_read"`
	}
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, int64(2), payload.GrantedUserID)
	assert.True(t, payload.CanRead)

	empty, err := NewAccessEvent(UserRegistered, 3, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Payload)

	_, err = NewAccessEvent(TaskCreated, 1, 1, func() {})
	assert.Error(t, err)
}

func TestLoggingHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewLoggingHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	event, err := NewAccessEvent(TaskCreated, 7, 42, map[string]string{"title": "Buy milk"})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	out := buf.String()
	assert.Contains(t, out, `"event_type":"task.created"`)
	assert.Contains(t, out, `"actor_id":7`)
	assert.Contains(t, out, `"task_id":42`)
	assert.Contains(t, out, `"component":"audit"`)
}

func TestNopEmitter(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), &AccessEvent{}))
}
