package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/utils"
)

// HealthResponse is the payload of GET /api/health
type HealthResponse struct {
	Status       string `json:"status"`
	TimestampUTC string `json:"timestampUtc"`
}

// Pinger checks that a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleHealth handles GET /api/health. Liveness only; it does not touch the
// database.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:       "Healthy",
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReady handles GET /readyz and verifies the database is reachable
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		_ = utils.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:       "Unhealthy",
			TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	_ = utils.WriteOK(w, HealthResponse{
		Status:       "Healthy",
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
	})
}
