package frontend

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// loginForm is the login form submission
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Redirect string `form:"redirect"`
}

// SessionStatus is the JSON body of GET /session
type SessionStatus struct {
	Authenticated bool                 `json:"authenticated"`
	Variant       string               `json:"variant"`
	Profile       *session.UserProfile `json:"profile,omitempty"`
}

func (s *Server) showLogin(c *gin.Context) {
	redirect := session.SafeRedirect(c.Query("redirect"), s.variant.HomePath)

	if s.manager.Authorized() {
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}

	s.renderLogin(c, http.StatusOK, c.Query("redirect"), "", c.Query("expired") == "1")
}

func (s *Server) submitLogin(c *gin.Context) {
	if s.loginLimiter != nil && !s.loginLimiter.Allow() {
		s.logger.Warn().Str("client_ip", c.ClientIP()).Msg("Login rate limit exceeded")
		s.renderLogin(c, http.StatusTooManyRequests, c.PostForm("redirect"), "Too many login attempts, please wait a moment", false)
		return
	}

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderLogin(c, http.StatusBadRequest, c.PostForm("redirect"), "Username and password are required", false)
		return
	}

	result := s.manager.Login(c.Request.Context(), form.Username, form.Password)
	if !result.Success {
		s.renderLogin(c, http.StatusUnauthorized, form.Redirect, result.Message, false)
		return
	}

	target := session.SafeRedirect(form.Redirect, s.variant.HomePath)
	s.nav.Reset(target)
	c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) logout(c *gin.Context) {
	s.manager.Logout(c.Request.Context())
	s.nav.Reset(s.variant.LoginPath)
	c.Redirect(http.StatusSeeOther, s.variant.LoginPath)
}

func (s *Server) sessionStatus(c *gin.Context) {
	status := SessionStatus{Variant: s.variant.Name}

	if s.manager.Authorized() {
		if sess, ok := s.manager.GetSession(); ok {
			status.Authenticated = true
			status.Profile = &sess.Profile
		}
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) renderLogin(c *gin.Context, status int, redirect, message string, expired bool) {
	s.render(c, status, "login.html", gin.H{
		"Redirect": redirect,
		"Error":    message,
		"Expired":  expired,
	})
}
