package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipdraft/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	pipeline port.ExtractionPipeline
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pipeline port.ExtractionPipeline) *HealthHandler {
	return &HealthHandler{pipeline: pipeline}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if _, err := h.pipeline.ActiveBatches(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "extraction pipeline not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
