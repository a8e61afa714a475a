package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swift-store/middleware"
	"swift-store/models"
)

type CreateProductRequest struct {
	Name     string   `form:"name" json:"name" binding:"required"`
	Price    *float64 `form:"price" json:"price" binding:"required,min=0"`
	Category string   `form:"category" json:"category" binding:"required"`
	Image    string   `form:"image" json:"image" binding:"required"`
}

// VendorDashboard shows the vendor's own products
func (h *Handler) VendorDashboard(c *gin.Context) {
	vendor, err := h.currentUser(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.staleSession(c, models.RoleVendor)
		return
	}
	if err != nil {
		h.internalError(c, "Failed to load vendor", err)
		return
	}

	var products []models.Product
	if err := h.db.WithContext(c.Request.Context()).
		Where("vendor_id = ?", vendor.ID).
		Order("id asc").
		Find(&products).Error; err != nil {
		h.internalError(c, "Failed to load products", err)
		return
	}

	render(c, "vendor_dashboard.html", gin.H{
		"Vendor":   vendor,
		"Products": products,
		"Flash":    middleware.TakeFlash(c),
	}, gin.H{
		"vendor":   vendor,
		"count":    len(products),
		"products": products,
	})
}

// CreateProduct lists a new product owned by the signed-in vendor
func (h *Handler) CreateProduct(c *gin.Context) {
	vendorID := middleware.GetUserID(c)

	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.SetFlash(c, "Every product needs a name, category, image and a non-negative price.")
		c.Redirect(http.StatusFound, models.RoleVendor.DashboardPath())
		return
	}

	product := models.Product{
		Name:     req.Name,
		Price:    *req.Price,
		Category: req.Category,
		Image:    req.Image,
		VendorID: vendorID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		h.internalError(c, "Failed to add product", err)
		return
	}

	h.log.Info("Product created", zap.Uint("product_id", product.ID), zap.Uint("vendor_id", vendorID))
	c.Redirect(http.StatusFound, models.RoleVendor.DashboardPath())
}

// DeleteProduct removes a product when the caller owns it. Requests for
// someone else's product are redirected without touching it.
func (h *Handler) DeleteProduct(c *gin.Context) {
	callerID := middleware.GetUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.internalError(c, "Failed to load product", err)
		return
	}

	if product.VendorID != callerID {
		h.log.Warn("Refused to delete foreign product",
			zap.Uint("product_id", product.ID),
			zap.Uint("owner_id", product.VendorID),
			zap.Uint("caller_id", callerID),
		)
		c.Redirect(http.StatusFound, models.RoleVendor.DashboardPath())
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		h.internalError(c, "Failed to delete product", err)
		return
	}
	c.Redirect(http.StatusFound, models.RoleVendor.DashboardPath())
}
