package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smartreads/internal/catalog"
	"smartreads/internal/config"
	"smartreads/internal/kv"
	"smartreads/internal/middleware"
	"smartreads/internal/models"
	"smartreads/internal/service"
	"smartreads/internal/view"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	guard    *service.SessionGuard
	catalog  *catalog.Catalog
	activity *catalog.ActivityLog
	limiter  *middleware.RateLimiter
	store    kv.Store
	now      func() time.Time
}

// Dependencies are the services the HTTP layer talks to.
type Dependencies struct {
	Auth     *service.AuthService
	Guard    *service.SessionGuard
	Catalog  *catalog.Catalog
	Activity *catalog.ActivityLog
	Limiter  *middleware.RateLimiter
	Store    kv.Store
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.Security.RateLimit, cfg.Security.Burst)
	}
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     deps.Auth,
		guard:    deps.Guard,
		catalog:  deps.Catalog,
		activity: deps.Activity,
		limiter:  limiter,
		store:    deps.Store,
		now:      time.Now,
	}
}

func (h HandlerSet) Register(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	site := router.Group("/", middleware.Profile(middleware.ProfileConfig{
		Secret: h.cfg.Security.ProfileSecret,
		TTL:    h.cfg.Security.ProfileTTL,
		Secure: h.cfg.Security.SecureCookies,
	}, h.log))

	auth := site.Group("/auth")
	{
		auth.GET("", h.AuthPage)
		auth.POST("/signin", h.limiter.Middleware(), h.SignIn)
		auth.POST("/signup", h.limiter.Middleware(), h.SignUp)
		auth.POST("/social/:provider", h.SocialLogin)
		auth.GET("/demo/:role", h.DemoFill)
		auth.POST("/password-strength", h.PasswordStrength)
	}

	protected := site.Group("/", middleware.RequireSession(h.guard))
	protected.GET("/", h.Dashboard)
	protected.POST("/logout", h.Logout)
	protected.GET("/books/:id", h.BookDetails)

	admin := middleware.RequireRoles(models.UserRoleAdmin)
	for _, k := range h.kinds() {
		base := k.section.Path
		protected.GET(base, h.List(k.section))
		protected.GET(base+"/new", admin, h.NewForm(k))
		protected.GET(base+"/:id/edit", admin, h.EditForm(k))
		protected.POST(base, admin, h.Create(k))
		protected.POST(base+"/:id", admin, h.Update(k))
		protected.POST(base+"/:id/delete", admin, h.Delete(k))
	}

	adminAPI := protected.Group("/admin", admin)
	adminAPI.GET("/users", h.AdminListUsers)
	adminAPI.GET("/activity", h.AdminActivity)
}

// page fills the fields shared by every signed-in page.
func (h HandlerSet) page(c *gin.Context, section view.Section) view.Page {
	session, _ := middleware.CurrentSession(c)
	return view.Page{
		Title:    section.Label,
		Section:  section.Name,
		Sections: view.Sections,
		Session:  session,
		IsAdmin:  session.Role == models.UserRoleAdmin,
		Toast:    toastFromQuery(c),
	}
}

func toastFromQuery(c *gin.Context) *view.Toast {
	msg := c.Query("toast")
	if msg == "" {
		return nil
	}
	kind := view.ToastKind(c.Query("kind"))
	switch kind {
	case view.ToastSuccess, view.ToastError, view.ToastInfo:
	default:
		kind = view.ToastInfo
	}
	return &view.Toast{Message: msg, Kind: kind}
}

// redirectWithToast sends the browser to path and flashes msg there.
func redirectWithToast(c *gin.Context, path, msg string, kind view.ToastKind) {
	target, err := url.Parse(path)
	if err != nil {
		target = &url.URL{Path: "/"}
	}
	q := target.Query()
	q.Set("toast", msg)
	q.Set("kind", string(kind))
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusSeeOther, target.String())
}

// simulateLatency waits demo.latency unless the request goes away first.
func (h HandlerSet) simulateLatency(ctx context.Context) error {
	if h.cfg.Demo.Latency <= 0 {
		return nil
	}
	timer := time.NewTimer(h.cfg.Demo.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
