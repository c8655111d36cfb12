package handlers

import (
	"net/http"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LocationHandler serves the patrolled locations.
type LocationHandler struct {
	Repo  *repo.LocationRepo
	Audit *audit.Recorder
	Log   *zap.Logger
}

type locationInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description string   `json:"description" validate:"max=1000"`
	CameraIP    string   `json:"camera_ip" validate:"omitempty,ip"`
	CameraURL   string   `json:"camera_url" validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Active      *bool    `json:"active"`
}

func (in locationInput) model() models.Location {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return models.Location{
		Name:        in.Name,
		Description: in.Description,
		CameraIP:    in.CameraIP,
		CameraURL:   in.CameraURL,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Active:      active,
	}
}

// CreateLocation adds a location. Locations are active unless stated otherwise.
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input locationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	loc, err := h.Repo.Create(r.Context(), input.model())
	if err != nil {
		writeError(w, h.Log, err, "create location")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionCreateLocation, models.ResourceLocations,
		"location created: "+loc.Name, middleware.ClientIP(r))

	writeJSON(w, http.StatusCreated, loc)
}

// UpdateLocation replaces the editable fields of a location.
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var input locationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	loc, err := h.Repo.Update(r.Context(), chi.URLParam(r, "id"), input.model())
	if err != nil {
		writeError(w, h.Log, err, "location")
		return
	}

	h.Audit.Record(r.Context(), user, models.ActionUpdateLocation, models.ResourceLocations,
		"location updated: "+loc.Name, middleware.ClientIP(r))

	writeJSON(w, http.StatusOK, loc)
}

// ListLocations returns locations by name. Query: all=true includes inactive ones.
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	list, err := h.Repo.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, h.Log, err, "list locations")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
