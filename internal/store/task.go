package store

import (
	"context"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
)

// TaskStore defines persistence for tasks and their per-user permissions.
type TaskStore interface {
	// Create saves a new task and sets task.ID.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// CreateWithOwnerGrant saves a new task together with a full-access
	// permission row for its owner. Both rows are written in one transaction:
	// either the task and the owner grant exist afterwards, or neither does.
	CreateWithOwnerGrant(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListAccessible returns the tasks a user owns or holds any permission row
	// for, without duplicates, ordered by ID and windowed by page.
	// Returns an empty slice when nothing matches.
	ListAccessible(ctx context.Context, userID int64, page domain.Page) ([]*domain.Task, error)

	// Update replaces the title and description of an existing task.
	// OwnerID is ignored. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and, by cascade, its permission rows.
	// Reports whether a task was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// UpsertPermission creates or partially updates the permission row for
	// (taskID, userID). Nil flags default to false on creation and are left
	// unchanged on update. Concurrent calls for the same pair never produce
	// more than one row. Returns the stored permission.
	// Returns ErrInvalidEntity if the task or user does not exist.
	UpsertPermission(
		ctx context.Context,
		taskID, userID int64,
		update domain.PermissionUpdate,
	) (*domain.Permission, error)

	// GetPermission retrieves the permission row for (taskID, userID).
	// Returns ErrPermissionNotFound if no row exists.
	GetPermission(ctx context.Context, taskID, userID int64) (*domain.Permission, error)

	// HasRead reports the can_read flag for the exact pair, false without a row.
	HasRead(ctx context.Context, taskID, userID int64) (bool, error)

	// HasUpdate reports the can_update flag for the exact pair, false without a row.
	HasUpdate(ctx context.Context, taskID, userID int64) (bool, error)
}
