package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"swift-store/middleware"
	"swift-store/models"
	"swift-store/proximity"
)

func (h *Handler) currentUser(c *gin.Context) (*models.User, error) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, middleware.GetUserID(c)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// staleSession handles a session whose account no longer exists
func (h *Handler) staleSession(c *gin.Context, role models.UserRole) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, role.LoginPath())
}

// rankedProducts returns every product ordered by distance from customer
func (h *Handler) rankedProducts(c *gin.Context, customer *models.User) ([]proximity.RankedProduct, error) {
	db := h.db.WithContext(c.Request.Context())

	var products []models.Product
	if err := db.Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}

	var vendors []models.User
	if err := db.Where("role = ?", models.RoleVendor).Find(&vendors).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = v
	}

	return proximity.RankProducts(customer, products, byID), nil
}

// CustomerDashboard lists all products, nearest vendors first
func (h *Handler) CustomerDashboard(c *gin.Context) {
	customer, err := h.currentUser(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.staleSession(c, models.RoleCustomer)
		return
	}
	if err != nil {
		h.internalError(c, "Failed to load customer", err)
		return
	}

	ranked, err := h.rankedProducts(c, customer)
	if err != nil {
		h.internalError(c, "Failed to load products", err)
		return
	}

	render(c, "customer_dashboard.html", gin.H{
		"Customer": customer,
		"Products": ranked,
		"Flash":    middleware.TakeFlash(c),
	}, gin.H{
		"customer": customer,
		"count":    len(ranked),
		"products": ranked,
	})
}

// ListProducts is the storefront's JSON feed: the ranked product list
func (h *Handler) ListProducts(c *gin.Context) {
	user, err := h.currentUser(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not logged in"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to load user", err)
		return
	}

	var customer *models.User
	if user.Role == models.RoleCustomer {
		customer = user
	}
	ranked, err := h.rankedProducts(c, customer)
	if err != nil {
		h.internalError(c, "Failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

// NearbyVendors lists vendors within the configured radius of the customer
func (h *Handler) NearbyVendors(c *gin.Context) {
	customer, err := h.currentUser(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.staleSession(c, models.RoleCustomer)
		return
	}
	if err != nil {
		h.internalError(c, "Failed to load customer", err)
		return
	}

	var vendors []models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("role = ?", models.RoleVendor).
		Order("id asc").
		Find(&vendors).Error; err != nil {
		h.internalError(c, "Failed to load vendors", err)
		return
	}

	nearby, err := proximity.NearbyVendors(customer, vendors, h.radiusKm)
	if errors.Is(err, proximity.ErrNoLocation) {
		c.String(http.StatusOK, "Please save your location first.")
		return
	}

	render(c, "nearby_vendors.html", gin.H{
		"RadiusKm": h.radiusKm,
		"Vendors":  nearby,
	}, gin.H{
		"radius_km": h.radiusKm,
		"count":     len(nearby),
		"vendors":   nearby,
	})
}
