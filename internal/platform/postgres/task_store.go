package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a store that runs its queries on tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return err
	}

	if err := insertTask(ctx, s.db, task); err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("task owner does not exist",
				slog.Int64("owner_id", task.OwnerID))
			return fmt.Errorf("%w: user with ID %d not found", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", task.OwnerID))
	return nil
}

// CreateWithOwnerGrant implements store.TaskStore.CreateWithOwnerGrant.
// When the store already runs on a transaction the rows join it.
func (s *PostgresTaskStore) CreateWithOwnerGrant(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return err
	}

	// Work on a copy so a rolled back transaction leaves task.ID unset.
	created := *task
	err := store.RunInTransactionOrJoin(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		if err := insertTask(ctx, tx, &created); err != nil {
			return err
		}
		grant := domain.OwnerPermission(&created)
		_, err := upsertPermission(ctx, tx, grant.TaskID, grant.UserID, domain.PermissionUpdate{
			CanRead:   domain.Bool(grant.CanRead),
			CanUpdate: domain.Bool(grant.CanUpdate),
		})
		return err
	})
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("task owner does not exist",
				slog.Int64("owner_id", task.OwnerID))
			return fmt.Errorf("%w: user with ID %d not found", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task with owner grant",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", task.OwnerID))
		return MapError(err)
	}

	task.ID = created.ID

	log.Info("task created with owner grant",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", task.OwnerID))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving task by ID", slog.Int64("task_id", id))

	query := `
		SELECT id, title, description, owner_id
		FROM tasks
		WHERE id = $1
	`

	var task domain.Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.OwnerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// ListAccessible implements store.TaskStore.ListAccessible.
// A permission row grants visibility even when both of its flags are false.
func (s *PostgresTaskStore) ListAccessible(
	ctx context.Context,
	userID int64,
	page domain.Page,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page = page.Normalize()

	log.Debug("listing accessible tasks",
		slog.Int64("user_id", userID),
		slog.Int("skip", page.Skip),
		slog.Int("limit", page.Limit))

	query := `
		SELECT t.id, t.title, t.description, t.owner_id
		FROM tasks t
		WHERE t.owner_id = $1
		   OR EXISTS (
		       SELECT 1 FROM task_permissions p
		       WHERE p.task_id = t.id AND p.user_id = $1
		   )
		ORDER BY t.id
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit, page.Skip)
	if err != nil {
		log.Error("failed to list accessible tasks",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0, page.Limit)
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.OwnerID); err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	log.Debug("accessible tasks listed",
		slog.Int64("user_id", userID),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update.
// The stored owner is copied back into task.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.ValidateContent(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	log.Debug("updating task", slog.Int64("task_id", task.ID))

	query := `
		UPDATE tasks
		SET title = $1, description = $2
		WHERE id = $3
		RETURNING owner_id
	`

	err := s.db.QueryRowContext(ctx, query, task.Title, task.Description, task.ID).Scan(&task.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update", slog.Int64("task_id", task.ID))
			return store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return MapError(err)
	}

	log.Info("task updated successfully", slog.Int64("task_id", task.ID))
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("deleting task", slog.Int64("task_id", id))

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	deleted, err := rowsAffected(result)
	if err != nil {
		log.Error("failed to read delete result",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, err
	}

	if deleted {
		log.Info("task deleted successfully", slog.Int64("task_id", id))
	} else {
		log.Debug("task not found for delete", slog.Int64("task_id", id))
	}
	return deleted, nil
}

// UpsertPermission implements store.TaskStore.UpsertPermission.
// The unique (task_id, user_id) constraint makes concurrent upserts of the
// same pair converge on one row.
func (s *PostgresTaskStore) UpsertPermission(
	ctx context.Context,
	taskID, userID int64,
	update domain.PermissionUpdate,
) (*domain.Permission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("upserting task permission",
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", userID))

	perm, err := upsertPermission(ctx, s.db, taskID, userID, update)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("permission references missing task or user",
				slog.Int64("task_id", taskID),
				slog.Int64("user_id", userID))
			return nil, fmt.Errorf("%w: task %d or user %d not found",
				store.ErrInvalidEntity, taskID, userID)
		}
		log.Error("failed to upsert task permission",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID),
			slog.Int64("user_id", userID))
		return nil, MapError(err)
	}

	log.Info("task permission stored",
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", userID),
		slog.Bool("can_read", perm.CanRead),
		slog.Bool("can_update", perm.CanUpdate))
	return perm, nil
}

// GetPermission implements store.TaskStore.GetPermission.
func (s *PostgresTaskStore) GetPermission(
	ctx context.Context,
	taskID, userID int64,
) (*domain.Permission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT task_id, user_id, can_read, can_update
		FROM task_permissions
		WHERE task_id = $1 AND user_id = $2
	`

	var perm domain.Permission
	err := s.db.QueryRowContext(ctx, query, taskID, userID).
		Scan(&perm.TaskID, &perm.UserID, &perm.CanRead, &perm.CanUpdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPermissionNotFound
		}
		log.Error("failed to get task permission",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID),
			slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to get task permission: %w", err)
	}

	return &perm, nil
}

// HasRead implements store.TaskStore.HasRead.
func (s *PostgresTaskStore) HasRead(ctx context.Context, taskID, userID int64) (bool, error) {
	return s.permissionFlag(ctx, "can_read", taskID, userID)
}

// HasUpdate implements store.TaskStore.HasUpdate.
func (s *PostgresTaskStore) HasUpdate(ctx context.Context, taskID, userID int64) (bool, error) {
	return s.permissionFlag(ctx, "can_update", taskID, userID)
}

// permissionFlag reads one boolean column of the exact (taskID, userID) row.
// column is always one of the two fixed names above.
func (s *PostgresTaskStore) permissionFlag(
	ctx context.Context,
	column string,
	taskID, userID int64,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + column + ` FROM task_permissions WHERE task_id = $1 AND user_id = $2`

	var allowed bool
	err := s.db.QueryRowContext(ctx, query, taskID, userID).Scan(&allowed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		log.Error("failed to check task permission",
			slog.String("error", err.Error()),
			slog.String("flag", column),
			slog.Int64("task_id", taskID),
			slog.Int64("user_id", userID))
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}

	return allowed, nil
}

func insertTask(ctx context.Context, db store.DBTX, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return db.QueryRowContext(ctx, query, task.Title, task.Description, task.OwnerID).Scan(&task.ID)
}

// upsertPermission writes the permission row in a single statement.
// COALESCE keeps the stored flag when the caller left it nil.
func upsertPermission(
	ctx context.Context,
	db store.DBTX,
	taskID, userID int64,
	update domain.PermissionUpdate,
) (*domain.Permission, error) {
	query := `
		INSERT INTO task_permissions (task_id, user_id, can_read, can_update)
		VALUES ($1, $2, COALESCE($3, FALSE), COALESCE($4, FALSE))
		ON CONFLICT (task_id, user_id) DO UPDATE
		SET can_read = COALESCE($3, task_permissions.can_read),
		    can_update = COALESCE($4, task_permissions.can_update)
		RETURNING task_id, user_id, can_read, can_update
	`

	var perm domain.Permission
	err := db.QueryRowContext(ctx, query, taskID, userID, nullBool(update.CanRead), nullBool(update.CanUpdate)).
		Scan(&perm.TaskID, &perm.UserID, &perm.CanRead, &perm.CanUpdate)
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
