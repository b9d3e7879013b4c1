package handlers

import (
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "watchlist_session"
	flashCookie   = "flash"

	// Flash cookies only need to survive the redirect that set them.
	flashMaxAge = 30
)

func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// setFlash stores a one-shot message for the next rendered view. gin escapes
// the value on write and unescapes on read, so the message round-trips as-is.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, msg, flashMaxAge, "/", "", false, true)
}

// takeFlash returns the pending flash message, if any, and clears it.
func takeFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return msg
}
