package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/events"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// TaskInput is the user-supplied content of a task.
// OwnerID is optional on create and ignored on update.
type TaskInput struct {
	Title       string
	Description string
	OwnerID     *int64
}

// Service runs the task use cases on behalf of an authenticated actor.
type Service struct {
	tokens auth.TokenService
	users  service.UserService
	tasks  store.TaskStore
	engine *Engine
	events events.EventEmitter
	logger *slog.Logger
}

// NewService creates the access service. A nil emitter discards events.
func NewService(
	tokens auth.TokenService,
	users service.UserService,
	tasks store.TaskStore,
	engine *Engine,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Service {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tokens: tokens,
		users:  users,
		tasks:  tasks,
		engine: engine,
		events: emitter,
		logger: logger.With(slog.String("component", "access_service")),
	}
}

// Authenticate resolves the actor a token was issued for. Every failure,
// including a valid token for a user that no longer exists, is
// auth.ErrInvalidToken; only store failures are reported otherwise.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	username, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Debug("token subject no longer exists",
				slog.String("username", username))
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}

	actor := domain.ActorFromUser(user)
	return &actor, nil
}

// CreateTask creates a task owned by the actor, together with the owner's
// full-access permission row.
func (s *Service) CreateTask(ctx context.Context, actor domain.Actor, input TaskInput) (*domain.Task, error) {
	if err := s.engine.AuthorizeCreate(ctx, actor, input.OwnerID); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(input.Title, input.Description, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.CreateWithOwnerGrant(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.emit(ctx, events.TaskCreated, actor, task.ID, map[string]string{"title": task.Title})
	return task, nil
}

// ReadTask returns a task the actor may read.
func (s *Service) ReadTask(ctx context.Context, actor domain.Actor, taskID int64) (*domain.Task, error) {
	if err := s.engine.AuthorizeRead(ctx, actor, taskID); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to read task: %w", err)
	}
	return task, nil
}

// ListTasks returns a page of the tasks the actor owns or holds any
// permission row for.
func (s *Service) ListTasks(ctx context.Context, actor domain.Actor, page domain.Page) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListAccessible(ctx, actor.ID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask replaces the title and description of a task the actor may update.
func (s *Service) UpdateTask(
	ctx context.Context,
	actor domain.Actor,
	taskID int64,
	input TaskInput,
) (*domain.Task, error) {
	if err := s.engine.AuthorizeUpdate(ctx, actor, taskID); err != nil {
		return nil, err
	}

	task := &domain.Task{ID: taskID, Title: input.Title, Description: input.Description}
	if err := task.ValidateContent(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.emit(ctx, events.TaskUpdated, actor, taskID, map[string]string{"title": task.Title})
	return task, nil
}

// DeleteTask removes a task the actor may update. A missing task is
// store.ErrTaskNotFound.
func (s *Service) DeleteTask(ctx context.Context, actor domain.Actor, taskID int64) error {
	if err := s.engine.AuthorizeDelete(ctx, actor, taskID); err != nil {
		return err
	}

	deleted, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return store.ErrTaskNotFound
	}

	s.emit(ctx, events.TaskDeleted, actor, taskID, nil)
	return nil
}

// GrantPermission creates or partially updates the grantee's permission row
// on a task. Nil flags leave the stored value unchanged.
func (s *Service) GrantPermission(
	ctx context.Context,
	actor domain.Actor,
	taskID, granteeID int64,
	update domain.PermissionUpdate,
) (*domain.Permission, error) {
	if err := s.engine.AuthorizeGrant(ctx, actor, taskID); err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, fmt.Errorf("failed to grant permission: %w", err)
	}
	if _, err := s.users.GetUser(ctx, granteeID); err != nil {
		return nil, fmt.Errorf("failed to grant permission: %w", err)
	}

	if update.IsEmpty() {
		// A row with no flags still makes the task appear in the grantee's list.
		logger.FromContextOrDefault(ctx, s.logger).Info("permission grant carries no flags",
			slog.Int64("actor_id", actor.ID),
			slog.Int64("task_id", taskID),
			slog.Int64("grantee_id", granteeID))
	}

	perm, err := s.tasks.UpsertPermission(ctx, taskID, granteeID, update)
	if err != nil {
		// The task or grantee was removed after the checks above.
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, fmt.Errorf("failed to grant permission: %w", store.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to grant permission: %w", err)
	}

	s.emit(ctx, events.PermissionGranted, actor, taskID, perm)
	return perm, nil
}

// emit publishes an audit event. Failures are logged and never fail the
// operation that has already been committed.
func (s *Service) emit(ctx context.Context, eventType string, actor domain.Actor, taskID int64, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewAccessEvent(eventType, actor.ID, taskID, payload)
	if err != nil {
		log.Error("failed to build audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}
	if err := s.events.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
	}
}
