package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swift-store/middleware"
	"swift-store/models"
)

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// SaveLocation stores the caller's coordinates and their resolved address.
// Any signed-in role may call it.
func (h *Handler) SaveLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if err := h.db.WithContext(ctx).First(&user, middleware.GetUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not logged in"})
			return
		}
		h.internalError(c, "Failed to load user", err)
		return
	}

	address := h.geocoder.Lookup(ctx, *req.Latitude, *req.Longitude)

	err := h.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"latitude":  *req.Latitude,
		"longitude": *req.Longitude,
		"address":   address,
	}).Error
	if err != nil {
		h.internalError(c, "Failed to save location", err)
		return
	}

	h.log.Debug("Location saved",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("address", address),
	)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
