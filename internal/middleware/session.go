package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartreads/internal/models"
	"smartreads/internal/service"
)

const ContextSession = "current_session"

// AuthPath is where unauthenticated browsers are sent.
const AuthPath = "/auth"

// RequireSession lets the request through only when the profile holds a
// fresh session. Page loads are redirected to the auth page; fragment and
// form requests get 401.
func RequireSession(guard *service.SessionGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := guard.Check(c.Request.Context(), ProfileID(c), time.Now())
		if errors.Is(err, service.ErrUnauthenticated) {
			if c.Request.Method == http.MethodGet && c.Query("fragment") == "" && !wantsJSON(c) {
				c.Redirect(http.StatusFound, AuthPath)
				c.Abort()
				return
			}
			AbortWithError(c, http.StatusUnauthorized, "unauthenticated")
			return
		}
		if err != nil {
			_ = c.Error(err)
			AbortWithError(c, http.StatusInternalServerError, "session_unavailable")
			return
		}

		c.Set(ContextSession, session)
		c.Next()
	}
}

func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
