package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const errorPage = `<!DOCTYPE html><html><head><title>SmartReads</title></head>` +
	`<body><h1>Something went wrong</h1><p>Please reload the page.</p></body></html>`

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", RequestIDFrom(c)).
					Msg("panic recovered")
				AbortWithError(c, http.StatusInternalServerError, "internal_server_error")
			}
		}()
		c.Next()
	}
}

// AbortWithError answers JSON clients with {"error": code} and browsers
// with a plain error page.
func AbortWithError(c *gin.Context, status int, code string) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": code})
		return
	}
	c.Data(status, "text/html; charset=utf-8", []byte(errorPage))
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.HasPrefix(c.ContentType(), "application/json")
}
