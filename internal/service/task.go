package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/tasklist/internal/apperror"
	"github.com/sakif/tasklist/internal/model"
	"github.com/sakif/tasklist/internal/repository"
)

// Validation limits. Constants rather than magic numbers so the error
// messages and the checks can't drift apart.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// TaskService handles business logic for tasks.
//
// EVERY method takes the authenticated owner's ID as an explicit parameter.
// The identity is threaded through the call chain, never pulled from
// ambient state — which also means these methods are trivially testable
// with plain function calls.
type TaskService struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(repo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// CreateTaskInput carries the client-supplied fields for a new task.
// Note what is NOT here: the owner. The owner comes from the authenticated
// identity, passed separately to Create, so a request body can never plant
// a task in someone else's list.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     *time.Time
}

// Create validates and stores a new task for ownerID.
//
// Defaults: IsCompleted=false, Priority=Medium when the client omits it.
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "Please add a title")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.ValidationFailed("priority", "priority must be Low, Medium or High")
	}

	task := &model.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     in.DueDate,
		UserID:      ownerID, // from the authenticated identity, never the body
	}

	if err := s.repo.CreateForOwner(ctx, task); err != nil {
		return nil, fmt.Errorf("service/task: creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.String("taskID", task.ID),
		slog.String("userID", ownerID),
	)

	return task, nil
}

// List returns ownerID's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/task: listing tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial patch to one of ownerID's tasks.
//
// Patch fields that are present are validated with the same rules as
// Create; absent (nil) fields are untouched. A task that doesn't exist OR
// belongs to a different owner yields apperror.ErrNotFound — the repository
// contract guarantees the two are indistinguishable.
func (s *TaskService) Update(ctx context.Context, taskID, ownerID string, patch repository.TaskPatch) (*model.Task, error) {
	if taskID == "" {
		return nil, apperror.ValidationFailed("id", "task id is required")
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "Please add a title")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		patch.Title = &title
	}
	if patch.Description != nil && len(*patch.Description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperror.ValidationFailed("priority", "priority must be Low, Medium or High")
	}

	task, err := s.repo.UpdateOwned(ctx, taskID, ownerID, patch)
	if err != nil {
		return nil, fmt.Errorf("service/task: updating task %s: %w", taskID, err)
	}

	return task, nil
}

// Delete removes one of ownerID's tasks. Same not-found-or-not-owned
// contract as Update.
func (s *TaskService) Delete(ctx context.Context, taskID, ownerID string) error {
	if taskID == "" {
		return apperror.ValidationFailed("id", "task id is required")
	}

	if err := s.repo.DeleteOwned(ctx, taskID, ownerID); err != nil {
		return fmt.Errorf("service/task: deleting task %s: %w", taskID, err)
	}

	s.logger.Info("task deleted",
		slog.String("taskID", taskID),
		slog.String("userID", ownerID),
	)

	return nil
}
