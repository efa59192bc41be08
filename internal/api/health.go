package api

import (
	"net/http"
	"time"

	"github.com/mellihq/melli-ads/internal/api/respond"
)

// ServiceName identifies this service in health responses.
const ServiceName = "melli-ads"

// HealthHandler handles the liveness endpoint. It reports degraded
// dependencies in the body but never as a hard failure.
type HealthHandler struct {
	storeHealthy func() bool
	indexHealthy func() bool
}

// NewHealthHandler creates a health handler fed by the component checkers.
// Nil functions read as healthy.
func NewHealthHandler(storeHealthy, indexHealthy func() bool) *HealthHandler {
	return &HealthHandler{storeHealthy: storeHealthy, indexHealthy: indexHealthy}
}

// CheckHealth GET /health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	deps := map[string]string{"store": "up", "search_index": "up"}

	if h.storeHealthy != nil && !h.storeHealthy() {
		// The store has no fallback; without it the service cannot serve.
		status = "degraded"
		deps["store"] = "down"
	}
	if h.indexHealthy != nil && !h.indexHealthy() {
		// Index loss only degrades search to the store path.
		deps["search_index"] = "down"
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"service":      ServiceName,
		"dependencies": deps,
	})
}
