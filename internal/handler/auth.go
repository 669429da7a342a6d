package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/tasklist/internal/auth"
	"github.com/sakif/tasklist/internal/service"
)

// AuthHandler exposes registration, login, and the current-user endpoint.
//
// TOKEN TRANSPORT:
// The issued JWT is returned in the response BODY, not a cookie. The SPA
// client stores it and sends it back as "Authorization: Bearer <token>" on
// every request. Logout is therefore purely client-side — the client
// discards its copy and the token simply ages out after 30 days.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the body for successful register/login calls.
// The password hash is structurally absent — this type never had it.
type authResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/users/register
// BODY: {"name":"Alice","email":"alice@example.com","password":"pw123"}
// 201 → {"id":..., "name":..., "email":..., "token":...}
// 400 → validation failure or email already registered
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("register: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	result, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
		Token: result.Token,
	})
}

// HandleLogin authenticates an existing account.
//
// HTTP: POST /api/users/login
// 200 → same shape as register
// 400 → {"error":"validation_error","message":"Invalid credentials"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("login: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
		Token: result.Token,
	})
}

// HandleMe returns the authenticated caller's profile.
//
// HTTP: GET /api/me
// Auth: required — RequireAuth has already resolved the identity.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Only reachable if the route is mounted outside RequireAuth.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		h.logger.Error("me: user lookup failed", slog.String("userID", identity.ID))
		writeError(w, err)
		return
	}

	// model.User's PasswordHash carries json:"-"; encoding it is safe.
	writeJSON(w, http.StatusOK, user)
}
