package handlers

import (
	"fmt"
	"net/http"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo  *repo.UserRepo
	Audit *audit.Recorder
	Log   *zap.Logger
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	users, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.Log, err, "list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// ==========================
// Set User Status (soft activate / deactivate)
// ==========================
func (h *UserHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		Active *bool `json:"active" validate:"required"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	id := chi.URLParam(r, "id")
	if id == actor.ID && !*input.Active {
		JSONError(w, "cannot deactivate your own account", http.StatusBadRequest)
		return
	}

	user, err := h.Repo.SetActive(r.Context(), id, *input.Active)
	if err != nil {
		writeError(w, h.Log, err, "user")
		return
	}

	h.Audit.Record(r.Context(), actor, models.ActionUpdateUserStatus, models.ResourceUsers,
		fmt.Sprintf("set user %s active=%t", user.Email, user.Active), middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, user)
}
