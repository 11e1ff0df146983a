// Package devapi is a local stand-in for the ticketing API. It issues JWT
// bearer tokens for seeded accounts and serves the endpoints the storefront
// and console call.
package devapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/boxoffice-dev/boxoffice/internal/config"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// AdminRole grants access to user management
const AdminRole = session.AdminRole

// Server represents the development API server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	tokens    *TokenIssuer
	validator *validator.Validate
	logger    zerolog.Logger
}

// New creates a server on an opened and migrated database
func New(db *gorm.DB, tokens *TokenIssuer, zlog zerolog.Logger) *Server {
	validate := validator.New()

	// Alphanumeric, hyphens and underscores only
	validate.RegisterValidation("alphanumdash", func(fl validator.FieldLevel) bool {
		for _, char := range fl.Field().String() {
			if !((char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9') ||
				char == '-' ||
				char == '_') {
				return false
			}
		}
		return true
	})

	s := &Server{
		db:        db,
		tokens:    tokens,
		validator: validate,
		logger:    zlog,
	}
	s.setupRouter()
	return s
}

// Bootstrap opens and seeds the database described by cfg and creates a
// server. A missing JWT secret is replaced with a random one, which
// invalidates tokens across restarts.
func Bootstrap(cfg config.DevAPIConfig, zlog zerolog.Logger) (*Server, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = hex.EncodeToString(b)
		zlog.Warn().Msg("DEVAPI_JWT_SECRET not set, using a random secret")
	}

	tokens, err := NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	db, err := OpenDatabase(cfg.DatabaseURL, zlog)
	if err != nil {
		return nil, err
	}

	if err := Seed(db, DefaultSeedPassword, zlog); err != nil {
		CloseDatabase(db)
		return nil, err
	}

	return New(db, tokens, zlog), nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.GET("/health", s.healthCheck)

	// Public endpoints
	s.router.POST("/api/auth/login", s.login)
	s.router.GET("/api/concerts", s.listConcerts)

	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.tokens, s.logger))
	{
		api.POST("/auth/logout", s.logout)
		api.GET("/auth/me", s.getCurrentUser)

		api.GET("/orders", s.listOrders)
		api.GET("/orders/:id", s.getOrder)

		userRoutes := api.Group("/users")
		userRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			userRoutes.GET("", s.listUsers)
			userRoutes.POST("", s.createUser)
		}
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
			Str("request_id", c.GetHeader(session.RequestIDHeader)).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "boxoffice-devapi",
	})
}

// Start serves on addr until SIGINT/SIGTERM
func (s *Server) Start(addr string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		CloseDatabase(s.db)
		return err
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if err := CloseDatabase(s.db); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
