package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rail-console/fares/internal/cache"
	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/stations"
	"github.com/rail-console/fares/internal/store"
)

// StationHandler handles station administration requests
type StationHandler struct {
	src   store.StationSource
	cache *cache.Cache
}

// NewStationHandler creates a new handler with the given station source.
// Writes flush c because the cached route view depends on stations.
func NewStationHandler(src store.StationSource, c *cache.Cache) *StationHandler {
	return &StationHandler{src: src, cache: c}
}

// StationsResponse is the JSON response for GET /api/stations
type StationsResponse struct {
	Stations []models.Station `json:"stations"`
	Count    int              `json:"count"`
}

// CreateStationRequest is the body of POST /api/stations.
// Active defaults to true; a missing ID is generated.
type CreateStationRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// UpdateStationRequest is the body of PUT /api/stations/{stationId}
type UpdateStationRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// ListStations handles GET /api/stations
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	all, err := h.src.ListStations(r.Context())
	if err != nil {
		writeStoreError(w, "Failed to retrieve stations", err)
		return
	}
	writeJSON(w, http.StatusOK, StationsResponse{Stations: all, Count: len(all)})
}

// CreateStation handles POST /api/stations
func (h *StationHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	var req CreateStationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	station := models.Station{
		ID:        strings.TrimSpace(req.ID),
		Name:      strings.TrimSpace(req.Name),
		Active:    req.Active == nil || *req.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if station.ID == "" {
		station.ID = uuid.New().String()
	}
	if err := station.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.src.InsertStation(r.Context(), station); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "Station already exists", map[string]interface{}{
				"stationId": station.ID,
			})
			return
		}
		writeStoreError(w, "Failed to create station", err)
		return
	}
	h.cache.Flush()
	writeJSON(w, http.StatusCreated, station)
}

// UpdateStation handles PUT /api/stations/{stationId}
func (h *StationHandler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stationId")

	var req UpdateStationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Active == nil {
		writeError(w, http.StatusBadRequest, "name or active is required", nil)
		return
	}

	station, err := stations.Update(r.Context(), h.src, id, req.Name, req.Active)
	if err != nil {
		h.writeUpdateError(w, id, err)
		return
	}
	h.cache.Flush()
	writeJSON(w, http.StatusOK, station)
}

// ToggleStation handles POST /api/stations/{stationId}/toggle
func (h *StationHandler) ToggleStation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stationId")

	station, err := stations.Toggle(r.Context(), h.src, id)
	if err != nil {
		h.writeUpdateError(w, id, err)
		return
	}
	h.cache.Flush()
	writeJSON(w, http.StatusOK, station)
}

func (h *StationHandler) writeUpdateError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Station not found", map[string]interface{}{
			"stationId": id,
		})
	case isValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeStoreError(w, "Failed to update station", err)
	}
}
