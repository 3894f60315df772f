package handler

import (
	"net/http"

	"github.com/straye-as/product-configurator/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewHealthHandler(db *gorm.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database godoc
// @Summary Database readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"service": "database",
		})
		return
	}

	stats := map[string]interface{}{}
	if sqlDB, err := h.db.DB(); err == nil {
		s := sqlDB.Stats()
		stats = map[string]interface{}{
			"max_open_connections": s.MaxOpenConnections,
			"open_connections":     s.OpenConnections,
			"in_use":               s.InUse,
			"idle":                 s.Idle,
			"wait_count":           s.WaitCount,
			"wait_duration_ms":     s.WaitDuration.Milliseconds(),
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}
