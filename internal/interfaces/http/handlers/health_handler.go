package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is anything with a health probe; satisfied by the postgres
// connection and the redis client.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version string
	deps    map[string]Pinger
}

// NewHealthHandler creates the health handler.  deps maps a dependency name
// to its probe; readiness fails if any probe fails.
func NewHealthHandler(version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, deps: deps}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Liveness handles GET /healthz.  It answers as long as the process serves
// requests; dependency state is the readiness probe's business.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: h.version})
}

// Readiness handles GET /readyz, probing every registered dependency.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for name, dep := range h.deps {
		if err := dep.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	resp := healthResponse{Status: "ok", Version: h.version, Checks: checks}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
