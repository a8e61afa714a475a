package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swift-store/models"
)

// Entry is the landing page
func (h *Handler) Entry(c *gin.Context) {
	render(c, "entry.html", nil, gin.H{
		"message": "Welcome to Swift Store",
		"health":  "/health",
		"roles":   models.Roles,
	})
}

// Health reports service liveness and database reachability
func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "Swift Store",
		"version": "1.0.0",
	})
}
