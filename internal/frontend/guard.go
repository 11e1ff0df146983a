package frontend

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// SessionChecker reports whether the current session carries role
type SessionChecker interface {
	IsValid(role string) bool
}

// Guard blocks the wrapped routes until the session is valid for role
// (empty = any session). It is evaluated on every request, so a session
// ended on one page is caught before the next protected page renders.
// Rejected requests are redirected to loginPath with the requested URI
// preserved for the return trip.
func Guard(checker SessionChecker, loginPath, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker.IsValid(role) {
			c.Next()
			return
		}

		c.Redirect(http.StatusSeeOther, session.LoginURL(loginPath, c.Request.URL.RequestURI(), false))
		c.Abort()
	}
}
