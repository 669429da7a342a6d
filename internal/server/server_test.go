package server_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/tasklist/internal/server"
)

// newTestServer wires the real stack — router, middleware, services,
// in-memory sqlite — so these tests exercise the same path a browser does.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := server.New(server.Config{
		Port:      0,
		DBPath:    ":memory:",
		JWTSecret: "test-secret-at-least-16-chars!!",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return srv.Handler()
}

// do sends a JSON request through the router and returns the recorder.
func do(h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns the issued token.
func register(t *testing.T, h http.Handler, name, email, password string) string {
	t.Helper()
	rr := do(h, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

// =========================================================================
// AUTH FLOW
// =========================================================================

func TestRegisterLoginFlow(t *testing.T) {
	h := newTestServer(t)

	// Register → 201 with id, name, email, token (and no password field)
	rr := do(h, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var registered map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&registered))
	assert.Equal(t, "Alice", registered["name"])
	assert.Equal(t, "alice@example.com", registered["email"])
	assert.NotEmpty(t, registered["token"])
	assert.NotContains(t, registered, "password")
	assert.NotContains(t, registered, "passwordHash")

	// Duplicate registration → 400
	rr = do(h, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Alice2", "email": "alice@example.com", "password": "pw456",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Login with the right password → 200, token verifies to the same user
	rr = do(h, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var loggedIn map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&loggedIn))
	assert.Equal(t, registered["id"], loggedIn["id"])
	require.NotEmpty(t, loggedIn["token"])

	// The login token works against a protected route and resolves to Alice
	rr = do(h, http.MethodGet, "/api/me", loggedIn["token"].(string), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var me map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&me))
	assert.Equal(t, registered["id"], me["id"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "passwordHash")

	// Login with the wrong password → 400, no token issued
	rr = do(h, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
	assert.NotContains(t, rr.Body.String(), "token")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/some-id"},
		{http.MethodDelete, "/api/tasks/some-id"},
		{http.MethodGet, "/api/me"},
	} {
		rr := do(h, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code,
			"%s %s without a token", route.method, route.path)
	}

	rr := do(h, http.MethodGet, "/api/tasks", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// =========================================================================
// TASK CRUD + OWNERSHIP
// =========================================================================

func TestTaskLifecycle(t *testing.T) {
	h := newTestServer(t)
	token := register(t, h, "Alice", "alice@example.com", "pw123")

	// Create with just a title → defaults applied
	rr := do(h, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var task map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&task))
	assert.Equal(t, "Buy milk", task["title"])
	assert.Equal(t, false, task["isCompleted"])
	assert.Equal(t, "Medium", task["priority"])
	assert.Nil(t, task["dueDate"])
	taskID := task["id"].(string)

	// Empty title → 400
	rr = do(h, http.MethodPost, "/api/tasks", token, map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// List → exactly the one task
	rr = do(h, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)

	// Patch completion only → title survives
	rr = do(h, http.MethodPut, "/api/tasks/"+taskID, token, map[string]any{"isCompleted": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, true, updated["isCompleted"])
	assert.Equal(t, "Buy milk", updated["title"])

	// Delete → 200 with a message
	rr = do(h, http.MethodDelete, "/api/tasks/"+taskID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Task deleted successfully")

	// Deleting again → 404
	rr = do(h, http.MethodDelete, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	h := newTestServer(t)
	tokenA := register(t, h, "Alice", "alice@example.com", "pw123")
	tokenB := register(t, h, "Bob", "bob@example.com", "pw456")

	// Alice creates a task
	rr := do(h, http.MethodPost, "/api/tasks", tokenA, map[string]any{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var task map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&task))
	taskID := task["id"].(string)

	// Bob, with his own perfectly valid token, tries to update it → 404,
	// exactly what he'd get for a task that never existed.
	rr = do(h, http.MethodPut, "/api/tasks/"+taskID, tokenB, map[string]any{"isCompleted": true})
	assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())

	// Bob tries to delete it → 404
	rr = do(h, http.MethodDelete, "/api/tasks/"+taskID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Bob's list doesn't contain Alice's task
	rr = do(h, http.MethodGet, "/api/tasks", tokenB, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var bobs []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&bobs))
	assert.Empty(t, bobs)

	// Alice's task is intact, still incomplete
	rr = do(h, http.MethodGet, "/api/tasks", tokenA, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var alices []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&alices))
	require.Len(t, alices, 1)
	assert.Equal(t, false, alices[0]["isCompleted"])
}

// A client can't plant a task in another user's list by sending an owner
// field — the server ignores any owner in the body.
func TestCreateIgnoresClientSuppliedOwner(t *testing.T) {
	h := newTestServer(t)
	tokenA := register(t, h, "Alice", "alice@example.com", "pw123")
	tokenB := register(t, h, "Bob", "bob@example.com", "pw456")

	rr := do(h, http.MethodGet, "/api/me", tokenB, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var bob map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&bob))

	// Alice tries to create a task "as" Bob
	rr = do(h, http.MethodPost, "/api/tasks", tokenA, map[string]any{
		"title":  "planted",
		"userId": bob["id"],
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	// It lands in Alice's list, not Bob's.
	rr = do(h, http.MethodGet, "/api/tasks", tokenB, nil)
	var bobs []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&bobs))
	assert.Empty(t, bobs)

	rr = do(h, http.MethodGet, "/api/tasks", tokenA, nil)
	var alices []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&alices))
	assert.Len(t, alices, 1)
}

func TestHealthRouteIsPublic(t *testing.T) {
	h := newTestServer(t)

	rr := do(h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
