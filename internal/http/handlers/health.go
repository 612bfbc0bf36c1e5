package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/http/respond"
)

// Pinger checks a dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler returns uptime and dependency status.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
}

// NewHealthHandler creates a health endpoint handler. db may be nil.
func NewHealthHandler(startedAt time.Time, db Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db(ctx); err != nil {
			slog.Warn("health: database ping failed", "error", err)
			body["status"] = "degraded"
			body["database"] = "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, "degraded", body)
			return
		}
		body["database"] = "ok"
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
