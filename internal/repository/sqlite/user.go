package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/tasklist/internal/apperror"
	"github.com/sakif/tasklist/internal/model"
	"github.com/sakif/tasklist/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
// `var _ X = (*Y)(nil)` fails the build immediately if a method is missing,
// instead of at the first call site that passes *DB as the interface.
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user row.
//
// EMAIL UNIQUENESS:
// The service layer checks for an existing email first (so it can return a
// friendly "User already exists" message), but the UNIQUE constraint on
// users.email is the real guarantee — two concurrent registrations for the
// same address can both pass the service check, and exactly one INSERT will
// win here. The loser gets apperror.ErrConflict.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// SQLite reports constraint violations as "UNIQUE constraint
		// failed: users.email". The driver doesn't export a typed error for
		// it, so we match the message.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by their email address (the login key).
// Returns apperror.ErrNotFound if no account uses that address.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `email = ?`, email)
}

// GetByID retrieves a user by their internal ID. Used by the auth
// middleware to resolve a token's subject claim back to an account.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}
