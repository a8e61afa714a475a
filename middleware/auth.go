package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"swift-store/models"
)

const (
	SessionCookie = "swift_session"
	identityKey   = "identity"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller of a request
type Identity struct {
	UserID uint
	Role   models.UserRole
}

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext extracts the identity stored by WithIdentity
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// Sessions issues and verifies the signed session cookie
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(secret []byte, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: secret, ttl: ttl, secure: secure}
}

// GenerateToken creates a signed JWT for a given user
func (s *Sessions) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a session token and returns its claims
func (s *Sessions) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Start signs user in by setting the session cookie
func (s *Sessions) Start(c *gin.Context, user *models.User) error {
	token, err := s.GenerateToken(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// Clear drops the session cookie
func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
}

// Loader reads the session cookie, if any, and attaches the caller's
// Identity to both the gin context and the request context. Invalid or
// expired cookies are treated as anonymous.
func (s *Sessions) Loader() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err == nil && tokenStr != "" {
			if claims, err := s.Parse(tokenStr); err == nil {
				id := Identity{UserID: claims.UserID, Role: claims.Role}
				c.Set(identityKey, id)
				c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller loaded by Sessions.Loader
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok
}

// RoleRequired sends anyone not signed in with role to that role's login form
func RoleRequired(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok || id.Role != role {
			c.Redirect(http.StatusFound, role.LoginPath())
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionRequired accepts any signed-in role, redirecting others to loginPath
func SessionRequired(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// APISessionRequired rejects anonymous JSON calls with 403
func APISessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not logged in"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	id, _ := CurrentIdentity(c)
	return id.UserID
}
