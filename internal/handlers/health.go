package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rail-console/fares/internal/store"
)

// HealthHandler reports store connectivity
type HealthHandler struct {
	src    store.StationSource
	driver string
}

// NewHealthHandler creates a new handler for the given store driver
func NewHealthHandler(src store.StationSource, driver string) *HealthHandler {
	return &HealthHandler{src: src, driver: driver}
}

// GetHealth handles GET /health
// Lists stations as a database connectivity check
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.src.ListStations(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "error",
			"store":     h.driver,
			"database":  "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"store":     h.driver,
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}
