package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const readyTimeout = 2 * time.Second

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// HealthHandler handles health-check endpoints.
type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// ReadyEnvelope lists each named check as "ok" or its error.
type ReadyEnvelope struct {
	Success bool              `json:"success"`
	Checks  map[string]string `json:"checks"`
}

// Ping answers /health-check/ping for liveness and /health-check/ready
// for readiness.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "ready":
		h.ready(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	env := ReadyEnvelope{Success: true, Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			env.Success = false
			env.Checks[name] = err.Error()
			continue
		}
		env.Checks[name] = "ok"
	}
	status := http.StatusOK
	if !env.Success {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, env)
}
