package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ReadyHandler handles readiness check requests. Readiness follows the
// upstream reachability probe; with the probe disabled the gateway is
// always ready.
type ReadyHandler struct {
	Probe ReadinessProbe
}

// NewReadyHandler creates a new readiness check handler. probe may be nil
// when the reachability probe is disabled.
func NewReadyHandler(probe ReadinessProbe) *ReadyHandler {
	return &ReadyHandler{Probe: probe}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	isReady := h.Probe == nil || h.Probe.Healthy()

	status := "ready"
	statusCode := http.StatusOK
	if !isReady {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
	}

	if h.Probe != nil {
		probeStatus := h.Probe.Status()

		var lastError any
		if probeStatus.LastError != "" {
			lastError = probeStatus.LastError
		}

		upstreamHealth := map[string]any{
			"healthy":              probeStatus.Healthy,
			"consecutive_failures": probeStatus.ConsecutiveFailures,
			"last_error":           lastError,
		}
		if !probeStatus.LastCheck.IsZero() {
			upstreamHealth["last_check"] = probeStatus.LastCheck.Unix()
			upstreamHealth["latency_ms"] = probeStatus.Latency.Milliseconds()
		}
		response["upstream"] = upstreamHealth
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
