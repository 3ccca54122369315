package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreads/internal/catalog"
	"smartreads/internal/config"
	"smartreads/internal/handlers"
	"smartreads/internal/kv"
	"smartreads/internal/repository"
	"smartreads/internal/service"
)

func TestEngineServesAuthPageWithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{
		HTTP:     config.HTTPConfig{Host: "127.0.0.1", Port: 0},
		Security: config.SecurityConfig{ProfileSecret: "s", ProfileTTL: time.Hour, SessionTTL: 24 * time.Hour},
	}
	store := kv.NewMemoryStore()
	sessions := repository.NewSessionRepository(store)
	hs := handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Dependencies{
		Auth:     service.NewAuthService(repository.NewUserRepository(store), sessions, zerolog.Nop()),
		Guard:    service.NewSessionGuard(sessions, cfg.Security.SessionTTL, zerolog.Nop()),
		Catalog:  catalog.NewWithFixtures(),
		Activity: catalog.NewActivityLog(10),
		Store:    store,
	})

	srv, err := NewHTTPServer(cfg, zerolog.Nop(), hs)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.server.Addr)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), "SmartReads")
}
