package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

type permissionKey struct {
	taskID int64
	userID int64
}

// MockTaskStore implements store.TaskStore for testing.
// Without function fields it behaves like an in-memory database: IDs are
// assigned sequentially and deleting a task removes its permissions.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn               func(ctx context.Context, task *domain.Task) error
	CreateWithOwnerGrantFn func(ctx context.Context, task *domain.Task) error
	GetByIDFn              func(ctx context.Context, id int64) (*domain.Task, error)
	ListAccessibleFn       func(ctx context.Context, userID int64, page domain.Page) ([]*domain.Task, error)
	UpdateFn               func(ctx context.Context, task *domain.Task) error
	DeleteFn               func(ctx context.Context, id int64) (bool, error)
	UpsertPermissionFn     func(ctx context.Context, taskID, userID int64, update domain.PermissionUpdate) (*domain.Permission, error)
	HasReadFn              func(ctx context.Context, taskID, userID int64) (bool, error)
	HasUpdateFn            func(ctx context.Context, taskID, userID int64) (bool, error)

	// Data for default implementation
	Tasks       map[int64]*domain.Task
	Permissions map[permissionKey]*domain.Permission
	LastTaskID  int64

	// Users, when set, makes permission writes fail for unknown user IDs.
	Users *MockUserStore

	mu sync.Mutex
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks:       make(map[int64]*domain.Task),
		Permissions: make(map[permissionKey]*domain.Permission),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertLocked(task)
	return nil
}

// CreateWithOwnerGrant implements the TaskStore interface
func (m *MockTaskStore) CreateWithOwnerGrant(ctx context.Context, task *domain.Task) error {
	if m.CreateWithOwnerGrantFn != nil {
		return m.CreateWithOwnerGrantFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertLocked(task)
	m.Permissions[permissionKey{task.ID, task.OwnerID}] = domain.OwnerPermission(task)
	return nil
}

func (m *MockTaskStore) insertLocked(task *domain.Task) {
	m.LastTaskID++
	task.ID = m.LastTaskID
	stored := *task
	m.Tasks[task.ID] = &stored
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	found := *task
	return &found, nil
}

// ListAccessible implements the TaskStore interface
func (m *MockTaskStore) ListAccessible(
	ctx context.Context,
	userID int64,
	page domain.Page,
) ([]*domain.Task, error) {
	if m.ListAccessibleFn != nil {
		return m.ListAccessibleFn(ctx, userID, page)
	}
	page = page.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []int64
	for id, task := range m.Tasks {
		_, granted := m.Permissions[permissionKey{id, userID}]
		if task.OwnerID == userID || granted {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tasks := make([]*domain.Task, 0, page.Limit)
	for i := page.Skip; i < len(ids) && len(tasks) < page.Limit; i++ {
		found := *m.Tasks[ids[i]]
		tasks = append(tasks, &found)
	}
	return tasks, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.ValidateContent(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	stored.Title = task.Title
	stored.Description = task.Description
	task.OwnerID = stored.OwnerID
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[id]; !ok {
		return false, nil
	}
	delete(m.Tasks, id)
	for key := range m.Permissions {
		if key.taskID == id {
			delete(m.Permissions, key)
		}
	}
	return true, nil
}

// UpsertPermission implements the TaskStore interface
func (m *MockTaskStore) UpsertPermission(
	ctx context.Context,
	taskID, userID int64,
	update domain.PermissionUpdate,
) (*domain.Permission, error) {
	if m.UpsertPermissionFn != nil {
		return m.UpsertPermissionFn(ctx, taskID, userID, update)
	}

	if m.Users != nil {
		if _, err := m.Users.GetByID(ctx, userID); err != nil {
			return nil, store.ErrInvalidEntity
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[taskID]; !ok {
		return nil, store.ErrInvalidEntity
	}

	key := permissionKey{taskID, userID}
	current := domain.Permission{TaskID: taskID, UserID: userID}
	if existing, ok := m.Permissions[key]; ok {
		current = *existing
	}
	next := update.Apply(current)
	m.Permissions[key] = &next

	result := next
	return &result, nil
}

// GetPermission implements the TaskStore interface
func (m *MockTaskStore) GetPermission(ctx context.Context, taskID, userID int64) (*domain.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	perm, ok := m.Permissions[permissionKey{taskID, userID}]
	if !ok {
		return nil, store.ErrPermissionNotFound
	}
	found := *perm
	return &found, nil
}

// HasRead implements the TaskStore interface
func (m *MockTaskStore) HasRead(ctx context.Context, taskID, userID int64) (bool, error) {
	if m.HasReadFn != nil {
		return m.HasReadFn(ctx, taskID, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	perm, ok := m.Permissions[permissionKey{taskID, userID}]
	return ok && perm.CanRead, nil
}

// HasUpdate implements the TaskStore interface
func (m *MockTaskStore) HasUpdate(ctx context.Context, taskID, userID int64) (bool, error) {
	if m.HasUpdateFn != nil {
		return m.HasUpdateFn(ctx, taskID, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	perm, ok := m.Permissions[permissionKey{taskID, userID}]
	return ok && perm.CanUpdate, nil
}
