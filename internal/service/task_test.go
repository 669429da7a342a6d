package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/sakif/tasklist/internal/apperror"
	"github.com/sakif/tasklist/internal/model"
	"github.com/sakif/tasklist/internal/repository"
)

// =========================================================================
// FAKE REPOSITORY
// =========================================================================

// fakeTaskRepo is an in-memory repository.TaskRepository. It honours the
// ownership contract the same way the sqlite implementation does: lookups
// key on (taskID, ownerID) together, so a mismatch is a plain not-found.
type fakeTaskRepo struct {
	tasks  map[string]*model.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*model.Task)}
}

func (f *fakeTaskRepo) CreateForOwner(_ context.Context, task *model.Task) error {
	f.nextID++
	task.ID = fmt.Sprintf("task-%d", f.nextID)
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Task, error) {
	result := []model.Task{}
	for _, task := range f.tasks {
		if task.UserID == ownerID {
			result = append(result, *task)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeTaskRepo) UpdateOwned(_ context.Context, taskID, ownerID string, patch repository.TaskPatch) (*model.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, apperror.NotFound("task", taskID)
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.IsCompleted != nil {
		task.IsCompleted = *patch.IsCompleted
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	task.UpdatedAt = time.Now()
	result := *task
	return &result, nil
}

func (f *fakeTaskRepo) DeleteOwned(_ context.Context, taskID, ownerID string) error {
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return apperror.NotFound("task", taskID)
	}
	delete(f.tasks, taskID)
	return nil
}

func newTestTaskService(t *testing.T) (*TaskService, *fakeTaskRepo) {
	t.Helper()
	repo := newFakeTaskRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewTaskService(repo, logger), repo
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestTaskCreate_Defaults(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, err := svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.IsCompleted {
		t.Error("new task should not be completed")
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("Priority = %q, want Medium default", task.Priority)
	}
	if task.UserID != "owner-a" {
		t.Errorf("UserID = %q, want owner-a", task.UserID)
	}
	if task.DueDate != nil {
		t.Error("DueDate should be nil when not supplied")
	}
}

func TestTaskCreate_TrimsTitle(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, err := svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "  Buy milk  "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("Title = %q, want trimmed", task.Title)
	}
}

func TestTaskCreate_Validation(t *testing.T) {
	svc, _ := newTestTaskService(t)

	longTitle := make([]byte, MaxTitleLength+1)
	for i := range longTitle {
		longTitle[i] = 'x'
	}

	cases := []struct {
		name  string
		input CreateTaskInput
	}{
		{"empty title", CreateTaskInput{Title: ""}},
		{"whitespace title", CreateTaskInput{Title: "   "}},
		{"title too long", CreateTaskInput{Title: string(longTitle)}},
		{"bad priority", CreateTaskInput{Title: "ok", Priority: "Urgent"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "owner-a", tc.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestTaskCreate_ExplicitFields(t *testing.T) {
	svc, _ := newTestTaskService(t)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	task, err := svc.Create(context.Background(), "owner-a", CreateTaskInput{
		Title:       "File taxes",
		Description: "before the deadline",
		Priority:    model.PriorityHigh,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.Priority != model.PriorityHigh {
		t.Errorf("Priority = %q, want High", task.Priority)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", task.DueDate, due)
	}
}

// =========================================================================
// OWNERSHIP TESTS
// =========================================================================

// Owner B must get NotFound for owner A's task — never a "forbidden" that
// would confirm the task exists.
func TestTaskUpdate_CrossOwnerIsNotFound(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, err := svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "A's task"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := true
	_, err = svc.Update(context.Background(), task.ID, "owner-b", repository.TaskPatch{IsCompleted: &done})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("cross-owner Update() error = %v, want ErrNotFound", err)
	}

	// The same call by the real owner succeeds.
	updated, err := svc.Update(context.Background(), task.ID, "owner-a", repository.TaskPatch{IsCompleted: &done})
	if err != nil {
		t.Fatalf("owner Update() error = %v", err)
	}
	if !updated.IsCompleted {
		t.Error("owner Update() did not apply the patch")
	}
}

func TestTaskDelete_CrossOwnerIsNotFound(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, _ := svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "A's task"})

	err := svc.Delete(context.Background(), task.ID, "owner-b")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("cross-owner Delete() error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), task.ID, "owner-a"); err != nil {
		t.Fatalf("owner Delete() error = %v", err)
	}
}

func TestTaskList_OnlyOwnersTasks(t *testing.T) {
	svc, _ := newTestTaskService(t)

	// Interleave creates by two owners
	svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "a1"})
	svc.Create(context.Background(), "owner-b", CreateTaskInput{Title: "b1"})
	svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "a2"})
	svc.Create(context.Background(), "owner-b", CreateTaskInput{Title: "b2"})

	tasks, err := svc.List(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(tasks) != 2 {
		t.Fatalf("List() returned %d tasks, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != "owner-a" {
			t.Errorf("List(owner-a) returned task owned by %q", task.UserID)
		}
	}
}

// =========================================================================
// UPDATE VALIDATION TESTS
// =========================================================================

func TestTaskUpdate_PartialPatch(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, _ := svc.Create(context.Background(), "owner-a", CreateTaskInput{
		Title:       "Original title",
		Description: "original description",
	})

	// Patch only the completion flag; everything else must survive.
	done := true
	updated, err := svc.Update(context.Background(), task.ID, "owner-a", repository.TaskPatch{IsCompleted: &done})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "Original title" {
		t.Errorf("Title = %q, clobbered by partial patch", updated.Title)
	}
	if updated.Description != "original description" {
		t.Errorf("Description = %q, clobbered by partial patch", updated.Description)
	}
	if !updated.IsCompleted {
		t.Error("IsCompleted not applied")
	}
}

func TestTaskUpdate_RejectsEmptyTitle(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, _ := svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "keep me"})

	empty := "   "
	_, err := svc.Update(context.Background(), task.ID, "owner-a", repository.TaskPatch{Title: &empty})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() with blank title error = %v, want ErrValidation", err)
	}
}

func TestTaskUpdate_RejectsBadPriority(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, _ := svc.Create(context.Background(), "owner-a", CreateTaskInput{Title: "keep me"})

	bad := model.Priority("Critical")
	_, err := svc.Update(context.Background(), task.ID, "owner-a", repository.TaskPatch{Priority: &bad})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() with bad priority error = %v, want ErrValidation", err)
	}
}

func TestTaskUpdate_AbsentTask(t *testing.T) {
	svc, _ := newTestTaskService(t)

	done := true
	_, err := svc.Update(context.Background(), "no-such-task", "owner-a", repository.TaskPatch{IsCompleted: &done})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() on absent task error = %v, want ErrNotFound", err)
	}
}
