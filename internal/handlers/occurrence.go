package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/metrics"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/crucial707/vigil/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OccurrenceHandler serves incident reports and their photos.
type OccurrenceHandler struct {
	Repo *repo.OccurrenceRepo
	// Rounds, when set, has the reporter's active round counted as having seen an incident.
	Rounds         *repo.RoundRepo
	Photos         *storage.PhotoStore
	MaxUploadBytes int64
	Audit          *audit.Recorder
	Log            *zap.Logger
	Now            func() time.Time
}

// CreateOccurrence records an incident reported by the caller. Priority defaults to medium.
func (h *OccurrenceHandler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		Location    string `json:"location" validate:"required,max=255"`
		Type        string `json:"type" validate:"required,oneof=theft vandalism fire accident suspicious medical_emergency other"`
		Priority    string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
		Description string `json:"description" validate:"required,max=5000"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	occ, err := h.Repo.Create(r.Context(), input.Location, input.Type, input.Priority, input.Description, user)
	if err != nil {
		writeError(w, h.Log, err, "create occurrence")
		return
	}
	metrics.IncOccurrencesCreated(occ.Type)

	if h.Rounds != nil {
		if err := h.Rounds.IncrementIncidents(r.Context(), user.ID); err != nil {
			orNop(h.Log).Warn("count incident on active round", zap.String("guard_id", user.ID), zap.Error(err))
		}
	}

	h.Audit.Record(r.Context(), user, models.ActionCreateOccurrence, models.ResourceOccurrences,
		fmt.Sprintf("occurrence %s created: %s at %s", occ.ID, occ.Type, occ.Location), middleware.ClientIP(r))

	writeJSON(w, http.StatusCreated, occ)
}

// ListOccurrences returns occurrences newest first. Guards only see their own.
// Query: limit (default 100, max 1000), offset.
func (h *OccurrenceHandler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), ownerFilter(user), limit, offset)
	if err != nil {
		writeError(w, h.Log, err, "list occurrences")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetOccurrence returns one occurrence under the same visibility rule as listing.
func (h *OccurrenceHandler) GetOccurrence(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	occ, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err, "occurrence")
		return
	}
	if !auth.CanActOn(user, occ.ReporterID) {
		JSONError(w, auth.ErrForbidden.Error(), http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

// ListByPriority returns every occurrence of one priority.
func (h *OccurrenceHandler) ListByPriority(w http.ResponseWriter, r *http.Request) {
	priority := chi.URLParam(r, "priority")
	if !models.ValidPriority(priority) {
		JSONValidationError(w, "validation failed",
			map[string]string{"priority": "must be one of: low medium high critical"}, http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)
	list, err := h.Repo.ListByPriority(r.Context(), priority, limit, offset)
	if err != nil {
		writeError(w, h.Log, err, "list occurrences by priority")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UploadPhoto stores the multipart "file" part and appends its URL to the
// occurrence. Only the reporter or a supervisor/administrator may attach photos.
func (h *OccurrenceHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	occ, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err, "occurrence")
		return
	}
	if !auth.CanActOn(user, occ.ReporterID) {
		JSONError(w, "not allowed to edit this occurrence", http.StatusForbidden)
		return
	}

	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			JSONError(w, "photo too large", http.StatusRequestEntityTooLarge)
			return
		}
		JSONValidationError(w, "validation failed", map[string]string{"file": "required"}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.Photos.Save(occ.ID, header.Filename, file)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			JSONError(w, "photo too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, h.Log, err, "save photo")
		return
	}

	if _, err := h.Repo.AppendPhoto(r.Context(), occ.ID, url); err != nil {
		if rmErr := h.Photos.Remove(url); rmErr != nil {
			orNop(h.Log).Warn("remove orphaned photo", zap.String("url", url), zap.Error(rmErr))
		}
		writeError(w, h.Log, err, "occurrence")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionUploadPhoto, models.ResourceOccurrences,
		"photo added to occurrence "+occ.ID, middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "photo uploaded",
		"photo_url": url,
	})
}

// ResolveOccurrence marks an occurrence resolved. Resolving again overwrites the notes.
func (h *OccurrenceHandler) ResolveOccurrence(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input struct {
		Notes string `json:"notes" validate:"max=5000"`
	}
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &input) {
			return
		}
	}

	occ, err := h.Repo.Resolve(r.Context(), chi.URLParam(r, "id"), input.Notes, nowUTC(h.Now))
	if err != nil {
		writeError(w, h.Log, err, "occurrence")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionResolveOccurrence, models.ResourceOccurrences,
		"occurrence "+occ.ID+" resolved", middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, occ)
}
