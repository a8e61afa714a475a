package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"swift-store/middleware"
	"swift-store/models"
)

type RegisterRequest struct {
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required,min=6"`
	CompanyName string `form:"company_name" json:"company_name"`
	Address     string `form:"address" json:"address"`
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

var roleTitles = map[models.UserRole]string{
	models.RoleCustomer: "Customer login",
	models.RoleVendor:   "Vendor login",
	models.RoleDelivery: "Delivery login",
}

// LoginPage shows the credential form for role
func (h *Handler) LoginPage(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Title":  roleTitles[role],
			"Action": role.LoginPath(),
			"Role":   role,
			"Flash":  middleware.TakeFlash(c),
		})
	}
}

// Login checks credentials against accounts of the given role only
func (h *Handler) Login(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		fail := func() {
			middleware.SetFlash(c, "Invalid credentials!")
			c.Redirect(http.StatusFound, role.LoginPath())
		}

		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			fail()
			return
		}

		var user models.User
		err := h.db.WithContext(c.Request.Context()).
			Where("email = ? AND role = ?", normalizeEmail(req.Email), role).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail()
			return
		}
		if err != nil {
			h.internalError(c, "Failed to look up user", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			fail()
			return
		}

		if err := h.sessions.Start(c, &user); err != nil {
			h.internalError(c, "Failed to start session", err)
			return
		}
		h.log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
		c.Redirect(http.StatusFound, role.DashboardPath())
	}
}

func parseRoleParam(c *gin.Context) (models.UserRole, bool) {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil {
		c.String(http.StatusNotFound, "Unknown role")
		return "", false
	}
	return role, true
}

// RegisterPage shows the sign-up form for /register/:role
func (h *Handler) RegisterPage(c *gin.Context) {
	role, ok := parseRoleParam(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Role":  role,
		"Flash": middleware.TakeFlash(c),
	})
}

// Register creates a new account. Email addresses are unique across all roles.
func (h *Handler) Register(c *gin.Context) {
	role, ok := parseRoleParam(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.SetFlash(c, "Please enter a valid email and a password of at least 6 characters.")
		c.Redirect(http.StatusFound, "/register/"+string(role))
		return
	}
	email := normalizeEmail(req.Email)
	db := h.db.WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		h.internalError(c, "Failed to check email", err)
		return
	}
	if count > 0 {
		middleware.SetFlash(c, "Email already registered!")
		c.Redirect(http.StatusFound, role.LoginPath())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(c, "Failed to hash password", err)
		return
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Role:     role,
		Address:  optional(req.Address),
	}
	if role == models.RoleVendor {
		user.CompanyName = optional(req.CompanyName)
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			middleware.SetFlash(c, "Email already registered!")
			c.Redirect(http.StatusFound, role.LoginPath())
			return
		}
		h.internalError(c, "Failed to create user", err)
		return
	}

	h.log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	middleware.SetFlash(c, "Account created successfully! Please login.")
	c.Redirect(http.StatusFound, role.LoginPath())
}

// Logout clears the session
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
