package handlers

import (
	"net/http"
	"time"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShiftHandler serves guard shifts. Shifts are independent of rounds.
type ShiftHandler struct {
	Repo  *repo.ShiftRepo
	Audit *audit.Recorder
	Log   *zap.Logger
	Now   func() time.Time
}

// StartShift opens an active shift for the caller, or 400 if one is already active.
func (h *ShiftHandler) StartShift(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		Location string `json:"location" validate:"required,max=255"`
		Notes    string `json:"notes" validate:"max=5000"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	s, err := h.Repo.Start(r.Context(), user, input.Location, input.Notes, nowUTC(h.Now))
	if err != nil {
		writeError(w, h.Log, err, "start shift")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionStartShift, models.ResourceShifts,
		"shift started at "+s.Location, middleware.ClientIP(r))

	writeJSON(w, http.StatusCreated, s)
}

// ListShifts returns shifts newest first. Guards only see their own.
func (h *ShiftHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), ownerFilter(user), limit, offset)
	if err != nil {
		writeError(w, h.Log, err, "list shifts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CurrentShift returns the caller's active shift or 404.
func (h *ShiftHandler) CurrentShift(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	s, err := h.Repo.ActiveForGuard(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.Log, err, "active shift")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListActiveShifts returns every active shift.
func (h *ShiftHandler) ListActiveShifts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.ListActive(r.Context())
	if err != nil {
		writeError(w, h.Log, err, "list active shifts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// FinishShift ends an active or paused shift owned by the caller (or any
// shift for supervisors/administrators).
func (h *ShiftHandler) FinishShift(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	s, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err, "shift")
		return
	}
	if !auth.CanActOn(user, s.GuardID) {
		JSONError(w, "not allowed to finish this shift", http.StatusForbidden)
		return
	}

	s, err = h.Repo.Finish(r.Context(), s.ID, nowUTC(h.Now))
	if err != nil {
		writeError(w, h.Log, err, "shift")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionFinishShift, models.ResourceShifts,
		"shift "+s.ID+" finished", middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, s)
}
