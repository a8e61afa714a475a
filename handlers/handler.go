package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swift-store/middleware"
)

// AddressResolver turns coordinates into a display address
type AddressResolver interface {
	Lookup(ctx context.Context, lat, lon float64) string
}

// Handler holds the dependencies every route needs
type Handler struct {
	db       *gorm.DB
	sessions *middleware.Sessions
	geocoder AddressResolver
	log      *zap.Logger
	radiusKm float64
}

func New(db *gorm.DB, sessions *middleware.Sessions, geocoder AddressResolver, log *zap.Logger, radiusKm float64) *Handler {
	return &Handler{
		db:       db,
		sessions: sessions,
		geocoder: geocoder,
		log:      log,
		radiusKm: radiusKm,
	}
}

// render answers with an HTML page, or JSON when the client asks for it
func render(c *gin.Context, page string, htmlData gin.H, jsonData interface{}) {
	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: page,
		HTMLData: htmlData,
		JSONData: jsonData,
	})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
