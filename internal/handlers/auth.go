package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users  *repo.UserRepo
	Tokens *auth.TokenIssuer
	Audit  *audit.Recorder
	Log    *zap.Logger
	Now    func() time.Time
}

// ==========================
// Login (email + password -> bearer token)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), input.Email)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, h.Log, err, "login")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, input.Password); err != nil {
		JSONError(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	if !user.Active {
		JSONError(w, auth.ErrAccountDisabled.Error(), http.StatusUnauthorized)
		return
	}

	token, _, err := h.Tokens.Issue(user.ID)
	if err != nil {
		orNop(h.Log).Error("issue token", zap.String("user_id", user.ID), zap.Error(err))
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	now := nowUTC(h.Now)
	if err := h.Users.TouchLastLogin(r.Context(), user.ID, now); err != nil {
		writeError(w, h.Log, err, "touch last login")
		return
	}
	user.LastLogin = &now

	h.Audit.Record(r.Context(), user, models.ActionLogin, models.ResourceAuth, "", middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// ==========================
// Register (administrators only)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		Name     string `json:"name" validate:"required,max=255"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6,max=72"`
		Role     string `json:"role" validate:"required,oneof=guard supervisor administrator"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		writeError(w, h.Log, err, "hash password")
		return
	}
	user, err := h.Users.Create(r.Context(), input.Name, input.Email, hash, input.Role)
	if err != nil {
		writeError(w, h.Log, err, "create user")
		return
	}

	h.Audit.Record(r.Context(), actor, models.ActionCreateUser, models.ResourceUsers,
		"created user "+user.Email+" with role "+user.Role, middleware.ClientIP(r))

	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Me
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Change Password
// ==========================
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
		ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	// 400 rather than 401: the bearer token is fine, only the payload is wrong.
	if err := auth.CheckPassword(user.PasswordHash, input.CurrentPassword); err != nil {
		JSONError(w, "current password is incorrect", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		writeError(w, h.Log, err, "hash password")
		return
	}
	if err := h.Users.UpdatePasswordHash(r.Context(), user.ID, hash); err != nil {
		writeError(w, h.Log, err, "user")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionChangePassword, models.ResourceAuth, "", middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
