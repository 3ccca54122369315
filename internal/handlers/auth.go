package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"smartreads/internal/middleware"
	"smartreads/internal/models"
	"smartreads/internal/security"
	"smartreads/internal/service"
	"smartreads/internal/view"
)

const msgDemoFilled = "Demo credentials filled! Click Sign In to continue."

func (h HandlerSet) authPage(tab string) view.AuthPage {
	p := view.NewAuthPage(tab)
	if !h.cfg.Demo.Enabled {
		p.Demo = nil
	}
	return p
}

// AuthPage shows the sign-in and sign-up forms, or skips straight to the
// dashboard when the profile already holds a fresh session.
func (h HandlerSet) AuthPage(c *gin.Context) {
	if _, err := h.guard.Check(c.Request.Context(), middleware.ProfileID(c), h.now()); err == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	p := h.authPage(c.Query("tab"))
	p.Toast = toastFromQuery(c)
	c.HTML(http.StatusOK, view.PageAuth, p)
}

func (h HandlerSet) SignIn(c *gin.Context) {
	input := service.SignInInput{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
		Role:     models.UserRole(c.PostForm("role")),
	}

	if err := h.simulateLatency(c.Request.Context()); err != nil {
		c.Status(http.StatusRequestTimeout)
		return
	}

	_, err := h.auth.SignIn(c.Request.Context(), middleware.ProfileID(c), input)
	if errors.Is(err, service.ErrInvalidCredentials) {
		p := h.authPage("signin")
		p.SignIn = view.SignInForm{Email: input.Email, Role: input.Role}
		p.Toast = &view.Toast{Message: service.MsgInvalidCredentials, Kind: view.ToastError}
		c.HTML(http.StatusUnauthorized, view.PageAuth, p)
		return
	}
	if err != nil {
		_ = c.Error(err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "sign_in_failed")
		return
	}

	redirectWithToast(c, "/", service.MsgSignedIn, view.ToastSuccess)
}

func (h HandlerSet) SignUp(c *gin.Context) {
	input := service.SignUpInput{
		FirstName:       c.PostForm("firstName"),
		LastName:        c.PostForm("lastName"),
		Email:           strings.TrimSpace(c.PostForm("email")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
		Role:            models.UserRole(c.PostForm("role")),
		TermsAccepted:   c.PostForm("terms") != "",
	}

	if err := h.simulateLatency(c.Request.Context()); err != nil {
		c.Status(http.StatusRequestTimeout)
		return
	}

	_, err := h.auth.SignUp(c.Request.Context(), input)
	if err == nil {
		redirectWithToast(c, "/auth?tab=signin", service.MsgAccountCreated, view.ToastSuccess)
		return
	}

	p := h.authPage("signup")
	p.SignUp = view.SignUpForm{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Role:      input.Role,
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		p.Toast = &view.Toast{Message: verr.Message, Kind: view.ToastError}
		c.HTML(http.StatusUnprocessableEntity, view.PageAuth, p)
	case errors.Is(err, service.ErrEmailTaken):
		p.Toast = &view.Toast{Message: service.MsgEmailTaken, Kind: view.ToastError}
		c.HTML(http.StatusConflict, view.PageAuth, p)
	default:
		_ = c.Error(err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "sign_up_failed")
	}
}

func (h HandlerSet) SocialLogin(c *gin.Context) {
	provider := c.Param("provider")
	if !slices.Contains(view.SocialProviders, provider) {
		middleware.AbortWithError(c, http.StatusNotFound, "unknown_provider")
		return
	}
	redirectWithToast(c, "/auth", service.SocialLoginMessage(provider), view.ToastInfo)
}

// DemoFill renders the sign-in form prefilled with a demo account.
func (h HandlerSet) DemoFill(c *gin.Context) {
	account, ok := service.DemoAccounts[models.UserRole(c.Param("role"))]
	if !h.cfg.Demo.Enabled || !ok {
		middleware.AbortWithError(c, http.StatusNotFound, "not_found")
		return
	}

	p := h.authPage("signin")
	p.SignIn = view.SignInForm{Email: account.Email, Password: account.Password, Role: account.Role}
	p.Toast = &view.Toast{Message: msgDemoFilled, Kind: view.ToastInfo}
	c.HTML(http.StatusOK, view.PageAuth, p)
}

type strengthRequest struct {
	Password string `json:"password"`
}

func (h HandlerSet) PasswordStrength(c *gin.Context) {
	var req strengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, security.PasswordStrength(req.Password))
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middleware.ProfileID(c)); err != nil {
		_ = c.Error(err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "sign_out_failed")
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.AuthPath)
}
