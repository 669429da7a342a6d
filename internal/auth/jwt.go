// Package auth provides JWT token issuance/verification, bcrypt password
// hashing, and the authentication middleware for the task API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client POSTs credentials to /api/users/register or /api/users/login
// 2. Server verifies them and issues a JWT access token in the response body
// 3. Client stores the token (localStorage) and sends it back on every
//    request as "Authorization: Bearer <token>"
// 4. Middleware validates the token, resolves the user, and sets the
//    identity in the request context before any task handler runs
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't store session
// data. All the information needed (userID, expiry) is inside the signed
// token, and the signature ensures nobody can tamper with it without the
// secret key.
//
// THE FLIP SIDE OF STATELESS:
// There is no server-side record of issued tokens, so a single token cannot
// be revoked before its natural expiry. "Logout" is purely the client
// discarding its copy. That is an accepted constraint of this design, not
// an oversight — adding revocation would require a server-side deny-list.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid. Thirty days keeps users
// logged in across sessions without a refresh-token flow.
const TokenTTL = 30 * 24 * time.Hour

const issuer = "tasklist"

// Sentinel errors returned by Validate. Callers treat both as
// "unauthenticated", but the distinction lets clients show "session
// expired, please log in again" instead of a generic failure.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — keep it safe.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. jwt.RegisteredClaims covers everything we
// need: "sub" carries the internal user ID, plus issued-at and expiry.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT access token for the given userID,
// valid for TokenTTL from now.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key for signing
// and verifying. Fine for a single-server deployment.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Tests use this to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string.
// Returns the userID (stored in the "sub" claim) if the token is valid.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches (prevents tokens minted by other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// ERROR CONTRACT:
// An expired-but-otherwise-valid token fails with ErrTokenExpired; anything
// else (malformed, unsigned, wrong key, wrong issuer, missing subject)
// fails with ErrTokenInvalid. Check with errors.Is.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HMAC
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w", ErrTokenExpired)
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: bad claims", ErrTokenInvalid)
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrTokenInvalid)
	}

	return userID, nil
}
