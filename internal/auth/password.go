// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is the point: it makes brute-force attacks expensive.
//
// bcrypt automatically:
//   - Generates a random salt per hash (two users with the same password
//     get different stored digests)
//   - Embeds the salt and cost in the output (no separate salt column)
//
// The output is a self-describing string:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 iterations)
//	 version
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256).
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly ~250ms on a
// modern server — negligible for a login, brutal for an attacker.
const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the plaintext does not
// match the stored digest, or when the digest itself is malformed. Both
// cases are a normal negative result — "these credentials are wrong" — not
// an internal failure, so callers can treat any Verify error as a failed
// login without leaking which case occurred.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected in tests —
// cost 4 makes a test-suite's worth of hashes take milliseconds instead of
// seconds, without changing the logic under test.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (low)
// bcrypt cost. Do NOT use in production — cost 4 is far too weak.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// Store the returned string directly in the database. It includes the salt
// and cost — bcrypt.CompareHashAndPassword knows how to decode it.
//
// Returns an error if the plaintext is longer than 72 bytes (a bcrypt
// limit; bcrypt silently truncates beyond that, so we reject explicitly).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// Returns nil on a match, ErrPasswordMismatch otherwise — including for a
// malformed stored digest, which from the caller's perspective is the same
// negative answer.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword compares in constant time internally, so an
// attacker can't tell from response time whether they got the first byte
// right.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
