package model

import "time"

// Priority is the task priority level. Stored as its string form.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single to-do item belonging to exactly one user.
//
// OWNERSHIP:
// UserID is set by the server from the authenticated identity when the task
// is created and never changes afterwards. Every repository query that
// touches a task conjoins the task ID with this owner ID, so one user's
// tasks are structurally unreachable from another user's requests.
//
// WHY DueDate *time.Time (a pointer)?
// The due date is optional. With a plain time.Time we couldn't tell "not
// set" from the zero time, and the zero time would serialize as
// "0001-01-01T00:00:00Z". A nil pointer serializes as JSON null, which is
// what the client expects for an unset date.
type Task struct {
	ID          string     `json:"id"          db:"id"`
	Title       string     `json:"title"       db:"title"`
	Description string     `json:"description" db:"description"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	Priority    Priority   `json:"priority"    db:"priority"`
	DueDate     *time.Time `json:"dueDate"     db:"due_date"`
	UserID      string     `json:"userId"      db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt"   db:"updated_at"`
}
