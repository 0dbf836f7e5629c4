package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zapzatron/ToDo-List-API/internal/config"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/metrics"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// Actions reported to the decision recorder.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionGrant  = "grant"
)

// Engine decides whether an actor may perform an action on a task.
type Engine struct {
	tasks       store.TaskStore
	grantPolicy string
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// NewEngine creates an Engine. An empty grantPolicy means config.GrantPolicyAny
// and a nil recorder discards decisions.
func NewEngine(
	tasks store.TaskStore,
	grantPolicy string,
	recorder metrics.Recorder,
	logger *slog.Logger,
) (*Engine, error) {
	switch grantPolicy {
	case "":
		grantPolicy = config.GrantPolicyAny
	case config.GrantPolicyAny, config.GrantPolicyUpdateHolder:
	default:
		return nil, fmt.Errorf("unknown grant policy %q", grantPolicy)
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		tasks:       tasks,
		grantPolicy: grantPolicy,
		recorder:    recorder,
		logger:      logger.With(slog.String("component", "permission_engine")),
	}, nil
}

// GrantPolicy returns the policy the engine enforces for grants.
func (e *Engine) GrantPolicy() string {
	return e.grantPolicy
}

// AuthorizeCreate allows any authenticated actor to create a task. If the
// request names an owner it must be the actor.
func (e *Engine) AuthorizeCreate(ctx context.Context, actor domain.Actor, requestedOwner *int64) error {
	if requestedOwner != nil && *requestedOwner != actor.ID {
		return e.deny(ctx, ActionCreate, actor, 0)
	}
	return e.allow(ctx, ActionCreate, actor, 0)
}

// AuthorizeRead allows the read iff the actor's permission row has can_read.
// A task that does not exist has no rows, so it is denied rather than
// reported missing.
func (e *Engine) AuthorizeRead(ctx context.Context, actor domain.Actor, taskID int64) error {
	return e.checkFlag(ctx, ActionRead, actor, taskID, e.tasks.HasRead)
}

// AuthorizeUpdate allows the update iff the actor's permission row has
// can_update. Missing tasks are denied as in AuthorizeRead.
func (e *Engine) AuthorizeUpdate(ctx context.Context, actor domain.Actor, taskID int64) error {
	return e.checkFlag(ctx, ActionUpdate, actor, taskID, e.tasks.HasUpdate)
}

// AuthorizeDelete reports store.ErrTaskNotFound for a missing task and
// otherwise applies the update rule.
func (e *Engine) AuthorizeDelete(ctx context.Context, actor domain.Actor, taskID int64) error {
	if _, err := e.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			e.recorder.RecordDecision(ActionDelete, metrics.OutcomeNotFound)
			return err
		}
		e.recorder.RecordDecision(ActionDelete, metrics.OutcomeError)
		return fmt.Errorf("failed to load task for delete: %w", err)
	}
	return e.checkFlag(ctx, ActionDelete, actor, taskID, e.tasks.HasUpdate)
}

// AuthorizeGrant applies the configured grant policy.
func (e *Engine) AuthorizeGrant(ctx context.Context, actor domain.Actor, taskID int64) error {
	if e.grantPolicy == config.GrantPolicyUpdateHolder {
		return e.checkFlag(ctx, ActionGrant, actor, taskID, e.tasks.HasUpdate)
	}
	return e.allow(ctx, ActionGrant, actor, taskID)
}

func (e *Engine) checkFlag(
	ctx context.Context,
	action string,
	actor domain.Actor,
	taskID int64,
	check func(ctx context.Context, taskID, userID int64) (bool, error),
) error {
	allowed, err := check(ctx, taskID, actor.ID)
	if err != nil {
		e.recorder.RecordDecision(action, metrics.OutcomeError)
		logger.FromContextOrDefault(ctx, e.logger).Error("permission lookup failed",
			slog.String("error", err.Error()),
			slog.String("action", action),
			slog.Int64("task_id", taskID),
			slog.Int64("user_id", actor.ID))
		return fmt.Errorf("failed to check %s permission: %w", action, err)
	}
	if !allowed {
		return e.deny(ctx, action, actor, taskID)
	}
	return e.allow(ctx, action, actor, taskID)
}

func (e *Engine) allow(ctx context.Context, action string, actor domain.Actor, taskID int64) error {
	e.recorder.RecordDecision(action, metrics.OutcomeAllowed)
	logger.FromContextOrDefault(ctx, e.logger).Debug("access allowed",
		slog.String("action", action),
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", actor.ID))
	return nil
}

func (e *Engine) deny(ctx context.Context, action string, actor domain.Actor, taskID int64) error {
	e.recorder.RecordDecision(action, metrics.OutcomeDenied)
	logger.FromContextOrDefault(ctx, e.logger).Info("access denied",
		slog.String("action", action),
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", actor.ID))
	return ErrNotAuthorized
}
