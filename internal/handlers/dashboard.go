package handlers

import (
	"net/http"
	"time"

	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// DashboardHandler serves the per-role dashboard counters. Nothing is cached.
type DashboardHandler struct {
	Repo *repo.DashboardRepo
	Log  *zap.Logger
	Now  func() time.Time
}

// Stats returns the caller's own counts for guards and the overview for
// supervisors and administrators. "Today" starts at UTC midnight.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	since := repo.StartOfDayUTC(nowUTC(h.Now))

	if !auth.SeesAll(user) {
		stats, err := h.Repo.GuardStats(r.Context(), user.ID, since)
		if err != nil {
			writeError(w, h.Log, err, "guard stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := h.Repo.Overview(r.Context(), since)
	if err != nil {
		writeError(w, h.Log, err, "overview stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
