package routes

import (
	"github.com/gin-gonic/gin"

	"swift-store/handlers"
	"swift-store/middleware"
	"swift-store/models"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	// ── Public pages ───────────────────────────────────────────────
	r.GET("/", h.Entry)
	r.GET("/health", h.Health)
	r.GET("/logout", h.Logout)

	for _, role := range models.Roles {
		r.GET(role.LoginPath(), h.LoginPage(role))
		r.POST(role.LoginPath(), h.Login(role))
	}
	r.GET("/register/:role", h.RegisterPage)
	r.POST("/register/:role", h.Register)

	// ── Customer ───────────────────────────────────────────────────
	customer := r.Group("/")
	customer.Use(middleware.RoleRequired(models.RoleCustomer))
	{
		customer.GET("/customer-dashboard", h.CustomerDashboard)
		customer.GET("/nearby-vendors", h.NearbyVendors)
	}

	// ── Vendor ─────────────────────────────────────────────────────
	vendor := r.Group("/")
	vendor.Use(middleware.RoleRequired(models.RoleVendor))
	{
		vendor.GET("/vendor-dashboard", h.VendorDashboard)
		vendor.POST("/vendor-dashboard", h.CreateProduct)
	}
	r.POST("/delete-product/:id", middleware.SessionRequired(models.RoleVendor.LoginPath()), h.DeleteProduct)

	// ── Delivery ───────────────────────────────────────────────────
	r.GET("/delivery-dashboard", middleware.RoleRequired(models.RoleDelivery), h.DeliveryDashboard)

	// ── JSON endpoints (any signed-in role) ────────────────────────
	api := r.Group("/")
	api.Use(middleware.APISessionRequired())
	{
		api.POST("/save-customer-location", h.SaveLocation)
		api.POST("/save-vendor-location", h.SaveLocation)
		api.GET("/api/products", h.ListProducts)
	}
}
