package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartreads/internal/models"
)

// RequireRoles must run after RequireSession.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		if _, ok := roleSet[session.Role]; !ok {
			AbortWithError(c, http.StatusForbidden, "forbidden")
			return
		}

		c.Next()
	}
}
