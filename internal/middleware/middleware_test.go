package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreads/internal/kv"
	"smartreads/internal/models"
	"smartreads/internal/repository"
	"smartreads/internal/security"
	"smartreads/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var profileCfg = ProfileConfig{Secret: "test-secret", TTL: time.Hour}

func TestRequestIDEchoesOrMints(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestRecoveryRendersErrorPage(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.New(&buf)))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
	assert.Contains(t, buf.String(), "panic recovered")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Accept", "application/json")
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"error":"internal_server_error"}`, w.Body.String())
}

func TestProfileIssuesAndReusesCookie(t *testing.T) {
	r := gin.New()
	r.Use(Profile(profileCfg, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ProfileID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ProfileCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	first := w.Body.String()
	assert.NotEmpty(t, first)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	r.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())
	assert.Empty(t, w.Result().Cookies())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ProfileCookie, Value: "forged"})
	r.ServeHTTP(w, req)
	assert.NotEqual(t, first, w.Body.String())
	assert.Len(t, w.Result().Cookies(), 1)
}

func guardedRouter(t *testing.T) (*gin.Engine, *repository.SessionRepository) {
	t.Helper()
	sessions := repository.NewSessionRepository(kv.NewMemoryStore())
	guard := service.NewSessionGuard(sessions, 24*time.Hour, zerolog.Nop())

	r := gin.New()
	r.Use(Profile(profileCfg, zerolog.Nop()))
	protected := r.Group("/", RequireSession(guard))
	protected.GET("/books", func(c *gin.Context) {
		s, _ := CurrentSession(c)
		c.String(http.StatusOK, string(s.Role))
	})
	protected.POST("/books", RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r, sessions
}

func profileCookie(t *testing.T, id string) *http.Cookie {
	t.Helper()
	token, err := security.GenerateProfileToken(profileCfg.Secret, id, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: ProfileCookie, Value: token}
}

func TestRequireSession(t *testing.T) {
	r, sessions := guardedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, AuthPath, w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books?fragment=rows", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, sessions.Save(context.Background(), "p1", models.Session{Role: models.UserRoleUser, LoginTime: time.Now()}))
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(profileCookie(t, "p1"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", w.Body.String())

	require.NoError(t, sessions.Save(context.Background(), "p2", models.Session{Role: models.UserRoleUser, LoginTime: time.Now().Add(-25 * time.Hour)}))
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(profileCookie(t, "p2"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestRequireRoles(t *testing.T) {
	r, sessions := guardedRouter(t)
	ctx := context.Background()
	require.NoError(t, sessions.Save(ctx, "user", models.Session{Role: models.UserRoleUser, LoginTime: time.Now()}))
	require.NoError(t, sessions.Save(ctx, "admin", models.Session{Role: models.UserRoleAdmin, LoginTime: time.Now()}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.AddCookie(profileCookie(t, "user"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/books", nil)
	req.AddCookie(profileCookie(t, "admin"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.POST("/auth/signin", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "limits are per client")

	rl.prune(time.Now().Add(time.Hour))
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	r := gin.New()
	r.POST("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestCORSAllowlist(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{" https://admin.example.com "}))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}
