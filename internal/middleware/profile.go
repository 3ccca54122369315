package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smartreads/internal/security"
)

const (
	ProfileCookie    = "smartreads_profile"
	ContextProfileID = "profile_id"
)

type ProfileConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Profile gives every browser a stable id, carried in a signed cookie. The
// id scopes the stored session the way browser storage is scoped to one
// browser.
func Profile(cfg ProfileConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(ProfileCookie); err == nil && raw != "" {
			claims, err := security.ParseProfileToken(raw, cfg.Secret)
			if err == nil {
				c.Set(ContextProfileID, claims.ProfileID)
				c.Next()
				return
			}
			log.Debug().Err(err).Msg("discarding profile cookie")
		}

		profileID := uuid.NewString()
		token, err := security.GenerateProfileToken(cfg.Secret, profileID, cfg.TTL)
		if err != nil {
			log.Error().Err(err).Msg("issue profile cookie")
			AbortWithError(c, http.StatusInternalServerError, "internal_server_error")
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ProfileCookie, token, int(cfg.TTL/time.Second), "/", "", cfg.Secure, true)
		c.Set(ContextProfileID, profileID)
		c.Next()
	}
}

func ProfileID(c *gin.Context) string {
	return c.GetString(ContextProfileID)
}
