// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY json:"-" ON PasswordHash?
// The bcrypt hash must NEVER leave the server. The json:"-" tag tells
// encoding/json to skip the field entirely, so even if a handler encodes a
// *model.User directly (like /api/me does), the hash cannot leak into a
// response. No handler has to remember to strip it — the type does it.
//
// Email is the login key and carries a UNIQUE constraint in the database.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"` // bcrypt digest, never serialized
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
