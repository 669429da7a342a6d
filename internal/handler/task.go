package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/tasklist/internal/auth"
	"github.com/sakif/tasklist/internal/model"
	"github.com/sakif/tasklist/internal/repository"
	"github.com/sakif/tasklist/internal/service"
)

// TaskHandler manages CRUD operations for tasks.
//
// Every method starts by pulling the authenticated identity out of the
// request context (set by auth.RequireAuth) and passes its ID explicitly
// into the service. The handler never trusts an owner from the request
// body or the URL.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// owner extracts the authenticated user's ID, or writes a 401 and reports
// !ok. Task routes are all mounted behind RequireAuth, so the failure path
// only fires on a wiring mistake.
func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return "", false
	}
	return identity.ID, true
}

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	DueDate     *time.Time     `json:"dueDate"`
}

// updateTaskRequest is the partial-patch body for PUT. All fields are
// pointers: nil means "leave unchanged" (see repository.TaskPatch).
type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	IsCompleted *bool           `json:"isCompleted"`
	Priority    *model.Priority `json:"priority"`
	DueDate     *time.Time      `json:"dueDate"`
}

// HandleList returns the caller's tasks, newest first.
//
// HTTP: GET /api/tasks
// 200 → [Task...] — only ever the caller's own tasks.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("list tasks failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate stores a new task owned by the caller.
//
// HTTP: POST /api/tasks
// BODY: {"title":"Buy milk","description":"...","priority":"High","dueDate":"2026-09-01T00:00:00Z"}
// 201 → the created Task (isCompleted=false, priority defaults to Medium)
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("create task: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	task, err := h.tasks.Create(r.Context(), ownerID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleUpdate applies a partial patch to one of the caller's tasks.
//
// HTTP: PUT /api/tasks/{id}
// 200 → the updated Task
// 404 → the task doesn't exist or belongs to someone else (same response
// either way — callers can't probe other users' task IDs)
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("update task: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	task, err := h.tasks.Update(r.Context(), id, ownerID, repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes one of the caller's tasks.
//
// HTTP: DELETE /api/tasks/{id}
// 200 → {"message":"Task deleted successfully"}
// 404 → not found or not owned (indistinguishable, as with update)
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")

	if err := h.tasks.Delete(r.Context(), id, ownerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
