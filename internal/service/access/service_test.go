package access_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zapzatron/ToDo-List-API/internal/config"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/events"
	"github.com/Zapzatron/ToDo-List-API/internal/mocks"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service"
	"github.com/Zapzatron/ToDo-List-API/internal/service/access"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
	"github.com/Zapzatron/ToDo-List-API/internal/testutils"
)

type fixture struct {
	svc     *access.Service
	users   *service.UserServiceImpl
	tasks   *mocks.MockTaskStore
	tokens  *mocks.MockTokenService
	handler *recordingHandler
}

type recordingHandler struct {
	events []*events.AccessEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.AccessEvent) error {
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) types() []string {
	types := make([]string, 0, len(h.events))
	for _, e := range h.events {
		types = append(types, e.Type)
	}
	return types
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	userStore := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	tasks.Users = userStore
	tokens := &mocks.MockTokenService{}

	users := service.NewUserService(userStore, auth.NewBcryptManager(bcrypt.MinCost), log)
	engine, err := access.NewEngine(tasks, policy, nil, log)
	require.NoError(t, err)

	handler := &recordingHandler{}
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(handler)

	return &fixture{
		svc:     access.NewService(tokens, users, tasks, engine, emitter, log),
		users:   users,
		tasks:   tasks,
		tokens:  tokens,
		handler: handler,
	}
}

func (f *fixture) register(t *testing.T, username string) domain.Actor {
	t.Helper()
	user, err := f.users.Register(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	return domain.ActorFromUser(user)
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)
	alice := f.register(t, "alice")

	token, err := f.tokens.Issue(ctx, "alice", 0)
	require.NoError(t, err)

	actor, err := f.svc.Authenticate(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, alice, *actor)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// A well-formed token for a user that does not exist is just as invalid.
	ghost, err := f.tokens.Issue(ctx, "ghost", 0)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, ghost.Value)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_CreateTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)
	alice := f.register(t, "alice")

	task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, task.OwnerID)

	read, err := f.tasks.HasRead(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	update, err := f.tasks.HasUpdate(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, read)
	assert.True(t, update)
	assert.Equal(t, []string{events.TaskCreated}, f.handler.types())

	other := int64(42)
	_, err = f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t", OwnerID: &other})
	assert.ErrorIs(t, err, access.ErrNotAuthorized)

	_, err = f.svc.CreateTask(ctx, alice, access.TaskInput{Title: ""})
	assert.True(t, domain.IsValidationError(err))
}

func TestService_UpdateTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.svc.UpdateTask(ctx, bob, task.ID, access.TaskInput{Title: "hijack"})
	assert.ErrorIs(t, err, access.ErrNotAuthorized)

	_, err = f.svc.GrantPermission(ctx, alice, task.ID, bob.ID, domain.PermissionUpdate{CanUpdate: domain.Bool(true)})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTask(ctx, bob, task.ID, access.TaskInput{Title: "new", Description: ""})
	require.NoError(t, err)
	assert.Equal(t, &domain.Task{ID: task.ID, Title: "new", Description: "", OwnerID: alice.ID}, updated)

	_, err = f.svc.UpdateTask(ctx, bob, 999, access.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, access.ErrNotAuthorized)
}

func TestService_DeleteTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, bob, task.ID), access.ErrNotAuthorized)
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, alice, 999), store.ErrNotFound)

	require.NoError(t, f.svc.DeleteTask(ctx, alice, task.ID))
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, alice, task.ID), store.ErrNotFound)
	assert.Contains(t, f.handler.types(), events.TaskDeleted)
}

func TestService_GrantPermission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("partial updates do not clobber", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, config.GrantPolicyAny)
		alice := f.register(t, "alice")
		bob := f.register(t, "bob")
		task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t"})
		require.NoError(t, err)

		perm, err := f.svc.GrantPermission(ctx, alice, task.ID, bob.ID, domain.PermissionUpdate{CanRead: domain.Bool(true)})
		require.NoError(t, err)
		assert.Equal(t, domain.Permission{TaskID: task.ID, UserID: bob.ID, CanRead: true}, *perm)

		perm, err = f.svc.GrantPermission(ctx, alice, task.ID, bob.ID, domain.PermissionUpdate{CanUpdate: domain.Bool(true)})
		require.NoError(t, err)
		assert.True(t, perm.CanRead)
		assert.True(t, perm.CanUpdate)
	})

	t.Run("empty grant is stored and logged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, config.GrantPolicyAny)
		alice := f.register(t, "alice")
		bob := f.register(t, "bob")
		task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t"})
		require.NoError(t, err)

		log, handler := testutils.NewTestLogger()
		perm, err := f.svc.GrantPermission(logger.WithLogger(ctx, log), alice, task.ID, bob.ID, domain.PermissionUpdate{})
		require.NoError(t, err)
		assert.Equal(t, domain.Permission{TaskID: task.ID, UserID: bob.ID}, *perm)

		entries := handler.FindByMessage("permission grant carries no flags")
		require.Len(t, entries, 1)
		assert.Equal(t, bob.ID, entries[0]["grantee_id"])

		handler.Clear()
		_, err = f.svc.GrantPermission(logger.WithLogger(ctx, log), alice, task.ID, bob.ID,
			domain.PermissionUpdate{CanRead: domain.Bool(true)})
		require.NoError(t, err)
		assert.Empty(t, handler.FindByMessage("permission grant carries no flags"))
	})

	t.Run("missing task or grantee", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, config.GrantPolicyAny)
		alice := f.register(t, "alice")
		task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t"})
		require.NoError(t, err)

		_, err = f.svc.GrantPermission(ctx, alice, 999, alice.ID, domain.PermissionUpdate{})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		_, err = f.svc.GrantPermission(ctx, alice, task.ID, 999, domain.PermissionUpdate{})
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("update_holder policy", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, config.GrantPolicyUpdateHolder)
		alice := f.register(t, "alice")
		bob := f.register(t, "bob")
		task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t"})
		require.NoError(t, err)

		_, err = f.svc.GrantPermission(ctx, bob, task.ID, bob.ID, domain.PermissionUpdate{CanRead: domain.Bool(true)})
		assert.ErrorIs(t, err, access.ErrNotAuthorized)

		_, err = f.svc.GrantPermission(ctx, alice, task.ID, bob.ID, domain.PermissionUpdate{CanRead: domain.Bool(true)})
		assert.NoError(t, err)
	})
}

func TestService_ListTasks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	var aliceTasks []*domain.Task
	for _, title := range []string{"a1", "a2", "a3"} {
		task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: title})
		require.NoError(t, err)
		aliceTasks = append(aliceTasks, task)
	}
	bobTask, err := f.svc.CreateTask(ctx, bob, access.TaskInput{Title: "b1"})
	require.NoError(t, err)

	// A row with both flags false still lists the task.
	_, err = f.svc.GrantPermission(ctx, alice, aliceTasks[1].ID, bob.ID, domain.PermissionUpdate{CanRead: domain.Bool(false)})
	require.NoError(t, err)

	listed, err := f.svc.ListTasks(ctx, bob, domain.Page{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, aliceTasks[1].ID, listed[0].ID)
	assert.Equal(t, bobTask.ID, listed[1].ID)

	page, err := f.svc.ListTasks(ctx, alice, domain.Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, aliceTasks[1].ID, page[0].ID)
}

func TestService_StoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)
	alice := f.register(t, "alice")

	dbErr := errors.New("connection reset")
	f.tasks.CreateWithOwnerGrantFn = func(ctx context.Context, task *domain.Task) error { return dbErr }
	_, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t"})
	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, f.handler.events, "failed operations emit nothing")
}

// TestScenario_AliceAndBob walks the registration, grant and revoke flow.
func TestScenario_AliceAndBob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, config.GrantPolicyAny)

	aliceUser, err := f.users.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), aliceUser.ID)

	_, err = f.users.Register(ctx, "alice", "pw2")
	require.ErrorIs(t, err, service.ErrDuplicateUser)

	alice := domain.ActorFromUser(aliceUser)
	ownerID := alice.ID
	task, err := f.svc.CreateTask(ctx, alice, access.TaskInput{Title: "t", Description: "d", OwnerID: &ownerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)

	bobUser, err := f.users.Register(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(2), bobUser.ID)
	bob := domain.ActorFromUser(bobUser)

	_, err = f.svc.GrantPermission(ctx, alice, task.ID, bob.ID, domain.PermissionUpdate{CanRead: domain.Bool(true)})
	require.NoError(t, err)

	read, err := f.svc.ReadTask(ctx, bob, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", read.Title)

	_, err = f.svc.GrantPermission(ctx, alice, task.ID, bob.ID, domain.PermissionUpdate{CanRead: domain.Bool(false)})
	require.NoError(t, err)

	_, err = f.svc.ReadTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, access.ErrNotAuthorized)

	_, err = f.svc.ReadTask(ctx, bob, 999)
	assert.ErrorIs(t, err, access.ErrNotAuthorized)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, alice, 999), store.ErrNotFound)
}
