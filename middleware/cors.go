package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS answers preflight requests and decorates responses for the given
// origins. With no origins cross-origin requests get no CORS headers. The
// session cookie is only shared with an explicit origin list, never with "*".
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: !slices.Contains(origins, "*"),
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
