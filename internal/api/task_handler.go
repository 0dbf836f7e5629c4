package api

import (
	"log/slog"
	"net/http"

	"github.com/Zapzatron/ToDo-List-API/internal/api/shared"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service/access"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
)

// TaskIDParam is the chi URL parameter holding the task ID.
const TaskIDParam = "task_id"

// TaskHandler handles task requests for the authenticated actor.
type TaskHandler struct {
	access *access.Service
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(accessService *access.Service, logger *slog.Logger) *TaskHandler {
	if accessService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("access service cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		access: accessService,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks/create.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := getActorFromContext(r)
	if !ok {
		HandleAPIError(w, r, auth.ErrInvalidToken, "")
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.access.CreateTask(r.Context(), actor, access.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", actor.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ReadTask handles POST /tasks/read/{task_id}.
func (h *TaskHandler) ReadTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	task, err := h.access.ReadTask(r.Context(), actor, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ReadTasks handles POST /tasks/read_tasks?skip=&limit=.
func (h *TaskHandler) ReadTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromContext(r)
	if !ok {
		HandleAPIError(w, r, auth.ErrInvalidToken, "")
		return
	}

	page, err := getPage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.access.ListTasks(r.Context(), actor, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// UpdateTask handles POST /tasks/update/{task_id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.access.UpdateTask(r.Context(), actor, taskID, access.TaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	log.Debug("task updated",
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", actor.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles POST /tasks/delete/{task_id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	if err := h.access.DeleteTask(r.Context(), actor, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	log.Debug("task deleted",
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", actor.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, statusSuccess)
}

// UpdatePermissions handles POST /tasks/update_permissions/{task_id}.
func (h *TaskHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathID(w, r, TaskIDParam, log)
	if !ok {
		return
	}

	var req PermissionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	perm, err := h.access.GrantPermission(r.Context(), actor, taskID, req.GrantedUserID, domain.PermissionUpdate{
		CanRead:   req.CanRead,
		CanUpdate: req.CanUpdate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update permissions")
		return
	}

	log.Info("task permission updated",
		slog.Int64("task_id", taskID),
		slog.Int64("granted_user_id", req.GrantedUserID),
		slog.Bool("can_read", perm.CanRead),
		slog.Bool("can_update", perm.CanUpdate))
	shared.RespondWithJSON(w, r, http.StatusOK, permissionToResponse(perm))
}
