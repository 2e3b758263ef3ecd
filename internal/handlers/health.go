package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"inkwell/internal/database"
)

const healthTimeout = 2 * time.Second

type healthCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

type healthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]healthCheck `json:"checks"`
}

// Health reports service liveness and database reachability.
type Health struct {
	db *sql.DB
}

// NewHealth creates a Health handler.
func NewHealth(db *sql.DB) *Health {
	return &Health{db: db}
}

// Check pings the database with a short timeout and returns 503 when it
// is unreachable.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{
		Status: "ok",
		Checks: map[string]healthCheck{},
	}
	status := http.StatusOK

	latency, err := database.Health(ctx, h.db)
	if err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = healthCheck{Status: "unreachable"}
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = healthCheck{Status: "ok", Latency: latency.String()}
	}

	writeJSON(w, status, resp)
}
