// Package repository defines the storage interfaces the service layer
// programs against. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"
	"time"

	"github.com/sakif/tasklist/internal/model"
)

// TaskPatch is a partial update for a task. Nil fields are left unchanged.
//
// WHY POINTERS?
// A PUT body like {"isCompleted": true} must flip the flag without blanking
// the title. With plain values we couldn't tell "client sent empty string"
// from "client omitted the field"; a nil pointer means omitted.
type TaskPatch struct {
	Title       *string
	Description *string
	IsCompleted *bool
	Priority    *model.Priority
	DueDate     *time.Time
}

// UserRepository persists user accounts.
//
// Create must fail if the email is already registered (UNIQUE constraint).
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// TaskRepository persists tasks under an ownership-scoping discipline.
//
// THE OWNERSHIP CONTRACT (load-bearing — read this before implementing):
// Every method is parameterized by the owner's user ID, and implementations
// MUST fold the owner check into the storage query itself — a single
// predicate conjoining the task ID AND the owner ID. Never fetch by ID
// alone and compare ownership in application code afterwards: the fold
// makes cross-owner access structurally impossible rather than merely
// checked, and it guarantees that "exists but owned by someone else" is
// indistinguishable from "does not exist". That indistinguishability is a
// feature: it stops an attacker from probing for other users' task IDs.
//
// UpdateOwned and DeleteOwned return apperror.ErrNotFound both when the
// task is absent and when it belongs to a different owner.
type TaskRepository interface {
	CreateForOwner(ctx context.Context, task *model.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)
	UpdateOwned(ctx context.Context, taskID, ownerID string, patch TaskPatch) (*model.Task, error)
	DeleteOwned(ctx context.Context, taskID, ownerID string) error
}
