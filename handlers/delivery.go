package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeliveryDashboard is a placeholder until delivery tracking exists
func (h *Handler) DeliveryDashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "delivery_dashboard.html", nil)
}
