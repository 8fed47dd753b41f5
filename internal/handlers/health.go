package handlers

import (
	"net/http"
)

// HandleHealth reports storage and shared store reachability. Only a storage
// failure makes the service unhealthy; a missing shared store degrades it.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	checks := map[string]string{"storage": "ok"}
	if err := h.storage.Health(); err != nil {
		checks["storage"] = "unavailable"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	switch {
	case h.redis == nil:
		checks["redis"] = "disabled"
	case h.redis.Health() != nil:
		checks["redis"] = "unavailable"
		if code == http.StatusOK {
			status = "degraded"
		}
	default:
		checks["redis"] = "ok"
	}

	response := map[string]interface{}{
		"status": status,
		"checks": checks,
	}
	if h.limiter != nil {
		response["rate_limit"] = h.limiter.Stats()
	}

	h.sendJSONResponseWithStatus(w, code, response)
}
