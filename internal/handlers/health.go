package handlers

import (
	"net/http"

	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/repositories"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	health repositories.HealthRepository
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(health repositories.HealthRepository) *HealthHandler {
	return &HealthHandler{health: health}
}

// Live responds to GET /healthz.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}

// Ready responds to GET /readyz, checking database connectivity.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("unavailable", "database unreachable", http.StatusServiceUnavailable))
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, "")
}
