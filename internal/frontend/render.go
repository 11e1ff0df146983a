package frontend

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boxoffice-dev/boxoffice/internal/apiclient"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

var templateFuncs = template.FuncMap{
	"money": func(cents int64) string {
		return apiclient.FormatCents(cents)
	},
	"datetime": func(t time.Time) string {
		return t.Format("Mon Jan 2 2006, 15:04")
	},
}

// render executes a page template with the fields every page needs
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Variant"] = s.variant.Name
	data["LoginPath"] = s.variant.LoginPath
	if sess, ok := s.manager.GetSession(); ok && s.manager.Authorized() {
		data["User"] = sess.Profile
	}

	c.HTML(status, name, data)
}

// fail turns an API error into a response. An expired session becomes a
// redirect to login; everything else renders the error page.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		target, ok := s.nav.Take()
		if !ok {
			target = session.LoginURL(s.variant.LoginPath, c.Request.URL.RequestURI(), true)
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	status := http.StatusBadGateway
	message := "The ticketing service is unavailable. Please try again shortly."

	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden:
		status = http.StatusForbidden
		message = "You do not have permission to view this page."
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		status = http.StatusNotFound
		message = "Not found."
	}

	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("API request failed")
	s.render(c, status, "error.html", gin.H{"Message": message})
}
