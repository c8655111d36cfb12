package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RoundHandler serves patrol rounds.
type RoundHandler struct {
	Repo  *repo.RoundRepo
	Audit *audit.Recorder
	Log   *zap.Logger
	Now   func() time.Time
}

// StartRound opens a round for the caller. A guard with a started or
// in-progress round gets 400.
func (h *RoundHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		VisitedLocations []string `json:"visited_locations" validate:"omitempty,dive,max=255"`
		Notes            string   `json:"notes" validate:"max=5000"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	rd, err := h.Repo.Start(r.Context(), user, input.VisitedLocations, input.Notes, nowUTC(h.Now))
	if err != nil {
		writeError(w, h.Log, err, "start round")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionStartRound, models.ResourceRounds,
		"round started, locations: "+strings.Join(rd.VisitedLocations, ", "), middleware.ClientIP(r))

	writeJSON(w, http.StatusCreated, rd)
}

// ListRounds returns rounds newest first. Guards only see their own.
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), ownerFilter(user), limit, offset)
	if err != nil {
		writeError(w, h.Log, err, "list rounds")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ActiveRound returns the caller's active round or 404.
func (h *RoundHandler) ActiveRound(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	rd, err := h.Repo.ActiveForGuard(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.Log, err, "active round")
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

// FinishRound completes an active round.
func (h *RoundHandler) FinishRound(w http.ResponseWriter, r *http.Request) {
	h.close(w, r, models.RoundCompleted, models.ActionFinishRound, "finished")
}

// InterruptRound ends an active round without completing it.
func (h *RoundHandler) InterruptRound(w http.ResponseWriter, r *http.Request) {
	h.close(w, r, models.RoundInterrupted, models.ActionInterruptRound, "interrupted")
}

// close applies the guarded end-of-round transition: unknown id is 404, a
// caller who is neither the owner nor a supervisor/administrator is 403, and a
// round that is no longer active is 400.
func (h *RoundHandler) close(w http.ResponseWriter, r *http.Request, status, action, verb string) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	rd, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err, "round")
		return
	}
	if !auth.CanActOn(user, rd.GuardID) {
		JSONError(w, "not allowed to close this round", http.StatusForbidden)
		return
	}

	rd, err = h.Repo.Close(r.Context(), rd.ID, status, nowUTC(h.Now))
	if err != nil {
		writeError(w, h.Log, err, "round")
		return
	}

	h.Audit.Record(r.Context(), user, action, models.ResourceRounds,
		"round "+rd.ID+" "+verb, middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, rd)
}
