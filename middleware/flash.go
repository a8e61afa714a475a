package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const FlashCookie = "swift_flash"

// SetFlash queues a message for the next rendered page
func SetFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, msg, 60, "/", "", false, true)
}

// TakeFlash returns the pending message and clears it
func TakeFlash(c *gin.Context) string {
	msg, err := c.Cookie(FlashCookie)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(FlashCookie, "", -1, "/", "", false, true)
	return msg
}
