package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rail-console/fares/internal/cache"
	"github.com/rail-console/fares/internal/fares"
	"github.com/rail-console/fares/internal/models"
	"github.com/rail-console/fares/internal/store"
	"github.com/rail-console/fares/internal/topology"
)

// FareHandler handles fare matrix requests: authoring, the derived views
// and generation runs
type FareHandler struct {
	runner   *fares.Runner
	stations store.StationSource
	fares    store.FareStore
	cache    *cache.Cache
}

// NewFareHandler creates a new handler. runner must use the same stores.
func NewFareHandler(runner *fares.Runner, stations store.StationSource, fareStore store.FareStore, c *cache.Cache) *FareHandler {
	return &FareHandler{runner: runner, stations: stations, fares: fareStore, cache: c}
}

// RouteResponse is the JSON response for GET /api/route
type RouteResponse struct {
	Line     []string        `json:"line"`
	Stations []topology.Node `json:"stations"`
	Count    int             `json:"count"`
}

// FaresResponse is the JSON response for GET /api/fares
type FaresResponse struct {
	Fares []models.FareRecord `json:"fares"`
	Count int                 `json:"count"`
}

// MissingResponse is the JSON response for GET /api/fares/missing
type MissingResponse struct {
	Pairs []models.RouteKey `json:"pairs"`
	Count int               `json:"count"`
}

// FareRequest is the body of POST /api/fares and PUT /api/fares/{fareId}.
// Prices replace all 18 values; omitted ones are zero.
type FareRequest struct {
	OriginID      string            `json:"originId"`
	DestinationID string            `json:"destinationId"`
	Prices        models.FarePrices `json:"prices"`
	Currency      string            `json:"currency"`
}

// GetRoute handles GET /api/route
// Returns the active stations in generation order. The view is cached until
// the next write in this process; writes from other processes show up once
// the entry expires.
func (h *FareHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("route")
	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	version := h.cache.Version()
	route, err := h.runner.Route(r.Context())
	if err != nil {
		writeStoreError(w, "Failed to resolve route", err)
		return
	}

	resp := RouteResponse{Line: h.runner.Line().IDs(), Stations: route, Count: len(route)}
	h.cache.SetIfCurrent(key, resp, version)
	writeJSON(w, http.StatusOK, resp)
}

// ListFares handles GET /api/fares
// Optional origin and destination query parameters filter the list
func (h *FareHandler) ListFares(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")

	all, err := h.fares.ListFares(r.Context())
	if err != nil {
		writeStoreError(w, "Failed to retrieve fares", err)
		return
	}

	filtered := make([]models.FareRecord, 0, len(all))
	for _, f := range all {
		if origin != "" && f.OriginID != origin {
			continue
		}
		if destination != "" && f.DestinationID != destination {
			continue
		}
		filtered = append(filtered, f)
	}

	writeJSON(w, http.StatusOK, FaresResponse{Fares: filtered, Count: len(filtered)})
}

// GetFare handles GET /api/fares/{fareId}
func (h *FareHandler) GetFare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fareId")

	fare, err := h.fares.GetFare(r.Context(), id)
	if err != nil {
		h.writeFareError(w, id, "Failed to retrieve fare", err)
		return
	}
	writeJSON(w, http.StatusOK, fare)
}

// CreateFare handles POST /api/fares
// An operator-authored fare is rejected with 409 when its pair is priced
func (h *FareHandler) CreateFare(w http.ResponseWriter, r *http.Request) {
	var req FareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	fare := models.FareRecord{
		OriginID:      strings.TrimSpace(req.OriginID),
		DestinationID: strings.TrimSpace(req.DestinationID),
		Prices:        req.Prices,
		Currency:      h.currency(req.Currency),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !h.prepare(ctx, w, &fare) {
		return
	}

	id, err := h.fares.InsertFare(ctx, fare)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "A fare already exists for this route", map[string]interface{}{
				"originId":      fare.OriginID,
				"destinationId": fare.DestinationID,
			})
			return
		}
		writeStoreError(w, "Failed to create fare", err)
		return
	}
	fare.ID = id

	h.cache.Flush()
	writeJSON(w, http.StatusCreated, fare)
}

// UpdateFare handles PUT /api/fares/{fareId}
// CreatedAt is kept; UpdatedAt is refreshed
func (h *FareHandler) UpdateFare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fareId")

	var req FareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	prev, err := h.fares.GetFare(ctx, id)
	if err != nil {
		h.writeFareError(w, id, "Failed to retrieve fare", err)
		return
	}

	fare := *prev
	if o := strings.TrimSpace(req.OriginID); o != "" {
		fare.OriginID = o
	}
	if d := strings.TrimSpace(req.DestinationID); d != "" {
		fare.DestinationID = d
	}
	fare.Prices = req.Prices
	if req.Currency != "" {
		fare.Currency = req.Currency
	}
	fare.UpdatedAt = time.Now().UTC()
	if !h.prepare(ctx, w, &fare) {
		return
	}

	if err := h.fares.UpdateFare(ctx, fare); err != nil {
		h.writeFareError(w, id, "Failed to update fare", err)
		return
	}

	h.cache.Flush()
	writeJSON(w, http.StatusOK, fare)
}

// DeleteFare handles DELETE /api/fares/{fareId}
func (h *FareHandler) DeleteFare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fareId")

	if err := h.fares.DeleteFare(r.Context(), id); err != nil {
		h.writeFareError(w, id, "Failed to delete fare", err)
		return
	}

	h.cache.Flush()
	w.WriteHeader(http.StatusNoContent)
}

// GetMissing handles GET /api/fares/missing
// Lists the pairs the next generation run would price. Always read from the
// store, since other processes may have generated or imported fares.
func (h *FareHandler) GetMissing(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.runner.MissingPairs(r.Context())
	if err != nil {
		writeStoreError(w, "Failed to compute missing fares", err)
		return
	}
	if pairs == nil {
		pairs = []models.RouteKey{}
	}

	writeJSON(w, http.StatusOK, MissingResponse{Pairs: pairs, Count: len(pairs)})
}

// GetCoverage handles GET /api/fares/coverage
// Not cached, same as GetMissing
func (h *FareHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	coverage, err := h.runner.Coverage(r.Context())
	if err != nil {
		writeStoreError(w, "Failed to compute coverage", err)
		return
	}

	writeJSON(w, http.StatusOK, coverage)
}

// Generate handles POST /api/fares/generate
// Runs GenerateAllRoutes and returns its summary
func (h *FareHandler) Generate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.GenerateAllRoutes(r.Context())
	if err != nil {
		log.Printf("API: Failed to generate fares: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "Failed to generate fares", map[string]interface{}{
			"internal": err.Error(),
			"summary":  summary,
		})
		return
	}

	h.cache.Flush()
	writeJSON(w, http.StatusOK, summary)
}

// prepare fills station names and validates the fare. It writes the error
// response and returns false when the fare cannot be stored.
func (h *FareHandler) prepare(ctx context.Context, w http.ResponseWriter, fare *models.FareRecord) bool {
	if err := fare.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return false
	}

	all, err := h.stations.ListStations(ctx)
	if err != nil {
		writeStoreError(w, "Failed to retrieve stations", err)
		return false
	}
	names := make(map[string]string, len(all))
	for _, s := range all {
		names[s.ID] = s.Name
	}

	for _, id := range []string{fare.OriginID, fare.DestinationID} {
		if _, ok := names[id]; !ok {
			writeError(w, http.StatusBadRequest, "Unknown station", map[string]interface{}{
				"stationId": id,
			})
			return false
		}
	}
	fare.OriginName = names[fare.OriginID]
	fare.DestinationName = names[fare.DestinationID]
	return true
}

func (h *FareHandler) currency(requested string) string {
	if requested != "" {
		return requested
	}
	return h.runner.Generator().Currency
}

func (h *FareHandler) writeFareError(w http.ResponseWriter, id, message string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Fare not found", map[string]interface{}{
			"fareId": id,
		})
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "A fare already exists for this route", map[string]interface{}{
			"fareId": id,
		})
	default:
		writeStoreError(w, message, err)
	}
}
