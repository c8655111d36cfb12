package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// SystemHandler serves liveness, readiness and the system summary.
type SystemHandler struct {
	DB        *sql.DB
	Users     *repo.UserRepo
	Locations *repo.LocationRepo
	Env       string
	Version   string
	StartedAt time.Time
	Log       *zap.Logger
	Now       func() time.Time
}

// Health reports the process is up. It never touches the store.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the store answers a ping.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		orNop(h.Log).Warn("readiness ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Info summarizes the running service and the closed vocabularies clients build forms from.
func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Count(r.Context())
	if err != nil {
		writeError(w, h.Log, err, "count users")
		return
	}
	locations, err := h.Locations.Count(r.Context())
	if err != nil {
		writeError(w, h.Log, err, "count locations")
		return
	}

	now := nowUTC(h.Now)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":          "vigil",
		"version":          h.Version,
		"environment":      h.Env,
		"go_version":       runtime.Version(),
		"server_time":      now,
		"uptime_seconds":   int64(now.Sub(h.StartedAt).Seconds()),
		"total_users":      users,
		"total_locations":  locations,
		"roles":            []string{models.RoleGuard, models.RoleSupervisor, models.RoleAdministrator},
		"occurrence_types": models.OccurrenceTypes,
		"priorities":       []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical},
	})
}
