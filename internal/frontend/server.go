// Package frontend serves the storefront and the admin console: the login
// and logout views, the route guard, and the protected pages that call the
// ticketing API through the session-aware client.
package frontend

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/boxoffice-dev/boxoffice/internal/apiclient"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options configures a Server
type Options struct {
	ListenAddr         string
	AllowedOrigins     []string
	LoginRatePerMinute float64
}

// Server represents the web frontend for one variant
type Server struct {
	router       *gin.Engine
	variant      session.Variant
	manager      *session.Manager
	api          *apiclient.Client
	nav          *Navigator
	loginLimiter *rate.Limiter
	opts         Options
	logger       zerolog.Logger
}

// New creates a frontend server. The manager must already be installed on
// the API client's HTTP client.
func New(manager *session.Manager, api *apiclient.Client, nav *Navigator, opts Options, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		variant: manager.Variant(),
		manager: manager,
		api:     api,
		nav:     nav,
		opts:    opts,
		logger:  logger,
	}

	if opts.LoginRatePerMinute > 0 {
		burst := int(opts.LoginRatePerMinute)
		if burst < 1 {
			burst = 1
		}
		s.loginLimiter = rate.NewLimiter(rate.Limit(opts.LoginRatePerMinute/60), burst)
	}

	s.setupRouter(tmpl)
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter(tmpl *template.Template) {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.GET("/health", s.healthCheck)

	// Session status for same-site scripts
	status := s.router.Group("/session")
	if len(s.opts.AllowedOrigins) > 0 {
		status.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	status.GET("", s.sessionStatus)

	s.router.POST(s.variant.LoginPath, s.submitLogin)
	s.router.POST("/logout", s.logout)

	pages := s.router.Group("/")
	pages.Use(s.nav.Follow())
	pages.GET(s.variant.LoginPath, s.showLogin)

	protected := pages.Group("/")
	protected.Use(Guard(s.manager, s.variant.LoginPath, s.variant.RequiredRole))

	switch s.variant.Name {
	case session.Console().Name:
		pages.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, s.variant.HomePath)
		})
		protected.GET("/admin", s.adminDashboard)
		protected.GET("/admin/users", s.adminUsers)
		protected.GET("/admin/concerts", s.adminConcerts)
	default:
		pages.GET("/", s.concerts)
		protected.GET("/account", s.account)
		protected.GET("/orders", s.orders)
		protected.GET("/orders/:id", s.order)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "boxoffice-" + s.variant.Name,
	})
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.manager.Stop()
		return err
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	s.manager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
