package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swift-store/handlers"
	"swift-store/middleware"
	"swift-store/templates"
)

const ServiceName = "swift-store"

// NewRouter builds the engine with the full middleware chain and every route.
func NewRouter(h *handlers.Handler, sessions *middleware.Sessions, log *zap.Logger, corsOrigins []string) (*gin.Engine, error) {
	tmpl, err := templates.Load()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(
		middleware.Tracing(ServiceName),
		middleware.RequestLogger(log),
		gin.Recovery(),
		middleware.CORS(corsOrigins),
		sessions.Loader(),
	)

	SetupRoutes(r, h)
	return r, nil
}
