package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// UserResolver resolves a token subject (user ID) to a user's identity.
// The repository layer's user store satisfies this; the middleware only
// needs the one lookup, so it asks for exactly that.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) (*Identity, error)
}

// Identity is the authenticated caller attached to the request context.
// It deliberately carries no password hash — the middleware's output is
// safe to hand to any downstream code or serialize in a response.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue keys are compared by type AND value. A package-private
// type means only THIS package can create the key, so no other package can
// read or shadow the identity we store under it.
type contextKey string

const identityKey contextKey = "identity"

// Rejection reasons, logged server-side only. The 401 body is identical for
// all of them so a caller can't probe which check failed.
const (
	reasonMissingToken   = "MissingToken"
	reasonInvalidToken   = "InvalidToken"
	reasonExpiredToken   = "ExpiredToken"
	reasonUnknownSubject = "UnknownSubject"
)

// RequireAuth is the middleware that enforces authentication on every
// protected route. It must be mounted before any handler that reads or
// writes tasks.
//
// Per request it either ends Authenticated (identity in context, control
// passes to the handler) or Rejected (401, chain stops). The algorithm:
//
//  1. Read the Authorization header; no "Bearer <token>" → reject (MissingToken)
//  2. Validate the token → reject (InvalidToken / ExpiredToken)
//  3. Resolve the subject against the user store; the user may have been
//     deleted after the token was issued → reject (UnknownSubject)
//  4. Attach the resolved identity to the request context and continue
//
// The only side effect of a successful pass is the context value — the gate
// mutates nothing else.
func RequireAuth(tokens *TokenService, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				rejectUnauthorized(w, r, logger, reasonMissingToken)
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				reason := reasonInvalidToken
				if errors.Is(err, ErrTokenExpired) {
					reason = reasonExpiredToken
				}
				rejectUnauthorized(w, r, logger, reason)
				return
			}

			identity, err := users.ResolveUser(r.Context(), userID)
			if err != nil {
				rejectUnauthorized(w, r, logger, reasonUnknownSubject)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated caller from the request
// context. Returns (nil, false) if the request never passed RequireAuth.
//
// Usage in handlers:
//
//	identity, ok := auth.IdentityFromContext(r.Context())
//	if !ok { /* route is misconfigured — should be behind RequireAuth */ }
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// rejectUnauthorized writes the uniform 401 response.
//
// WHY ONE GENERIC MESSAGE?
// Telling the caller "your token is expired" vs "your token is garbage" vs
// "that user no longer exists" leaks information about server state. The
// specific reason goes to the log; the wire gets the same body every time.
func rejectUnauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string) {
	logger.Warn("request rejected",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
}
