package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrCredentialsRejected is returned by a RemoteAuth when the API refused
// the submitted identifier/secret.
var ErrCredentialsRejected = errors.New("credentials rejected")

// RemoteAuth is the remote API's session endpoints
type RemoteAuth interface {
	Login(ctx context.Context, identifier, secret string) (Session, error)
	Logout(ctx context.Context) error
}

// LoginResult is the outcome of Manager.Login. Message is set when
// Success is false and is suitable for display next to the login form.
type LoginResult struct {
	Success bool
	Profile UserProfile
	Message string
}

// Manager is the session facade used by views and commands
type Manager struct {
	variant     Variant
	store       Store
	remote      RemoteAuth
	validator   *Validator
	invalidator *Invalidator
	coordinator *Coordinator
	logger      zerolog.Logger
}

// Option configures a Manager
type Option func(*managerConfig)

type managerConfig struct {
	revalidateInterval time.Duration
}

// WithRevalidateInterval sets the periodic re-validation interval
func WithRevalidateInterval(d time.Duration) Option {
	return func(c *managerConfig) {
		c.revalidateInterval = d
	}
}

// NewManager assembles the session layer for one application variant
func NewManager(variant Variant, store Store, remote RemoteAuth, nav Navigator, logger zerolog.Logger, opts ...Option) *Manager {
	cfg := &managerConfig{revalidateInterval: DefaultRevalidateInterval}
	for _, opt := range opts {
		opt(cfg)
	}

	logger = logger.With().Str("variant", variant.Name).Logger()

	validator := NewValidator(store, logger)
	invalidator := NewInvalidator(store, nav, variant.LoginPath, logger)
	transport := NewTransport(store, invalidator, variant.LoginAPIPath, logger)
	coordinator := NewCoordinator(transport, validator, invalidator, variant.RequiredRole, cfg.revalidateInterval, logger)

	return &Manager{
		variant:     variant,
		store:       store,
		remote:      remote,
		validator:   validator,
		invalidator: invalidator,
		coordinator: coordinator,
		logger:      logger,
	}
}

// Variant returns the configuration this manager was built with
func (m *Manager) Variant() Variant {
	return m.variant
}

// Install registers the session hooks on client. Safe to call repeatedly.
func (m *Manager) Install(client *http.Client) error {
	return m.coordinator.Install(client)
}

// Stop halts periodic re-validation
func (m *Manager) Stop() {
	m.coordinator.Stop()
}

// Coordinator exposes the setup coordinator
func (m *Manager) Coordinator() *Coordinator {
	return m.coordinator
}

// Login authenticates against the remote API and stores the resulting
// session. A rejected attempt leaves any stored session untouched.
func (m *Manager) Login(ctx context.Context, identifier, secret string) LoginResult {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return LoginResult{Message: "Username and password are required"}
	}

	s, err := m.remote.Login(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, ErrCredentialsRejected) {
			m.logger.Info().Str("identifier", identifier).Msg("Login rejected")
			return LoginResult{Message: "Invalid username or password"}
		}
		m.logger.Error().Err(err).Msg("Login request failed")
		return LoginResult{Message: "Unable to reach the server, please try again"}
	}

	if !s.complete() {
		m.logger.Error().Msg("Login response missing credential or profile")
		return LoginResult{Message: "Unexpected response from the server"}
	}

	if m.variant.RequiredRole != "" && !s.Profile.HasRole(m.variant.RequiredRole) {
		m.logger.Warn().
			Str("user_id", s.Profile.ID).
			Str("required_role", m.variant.RequiredRole).
			Msg("Login without required role")
		return LoginResult{Message: fmt.Sprintf("This account does not have access to the %s", m.variant.Name)}
	}

	if err := m.invalidator.Establish(func() error { return m.store.Write(s) }); err != nil {
		m.logger.Error().Err(err).Msg("Failed to save session")
		return LoginResult{Message: "Unable to save your session"}
	}

	m.logger.Info().Str("user_id", s.Profile.ID).Str("username", s.Profile.Username).Msg("User logged in")

	return LoginResult{Success: true, Profile: s.normalize().Profile}
}

// Logout notifies the remote API (best effort) and clears the local session.
// It never fails; problems are logged.
func (m *Manager) Logout(ctx context.Context) {
	m.invalidator.Disarm()

	if _, ok := m.GetSession(); ok {
		if err := m.remote.Logout(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Remote logout failed")
		}
	}

	if err := m.store.Clear(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear session")
		return
	}
	m.logger.Info().Msg("User logged out")
}

// GetSession returns the stored session, if any. Unreadable data is
// cleared and reported as no session.
func (m *Manager) GetSession() (Session, bool) {
	s, ok, err := m.store.Read()
	if err != nil {
		if errors.Is(err, ErrMalformedSession) {
			m.logger.Warn().Err(err).Msg("Clearing unreadable session")
			if clearErr := m.store.Clear(); clearErr != nil {
				m.logger.Error().Err(clearErr).Msg("Failed to clear session")
			}
		} else {
			m.logger.Error().Err(err).Msg("Failed to read session")
		}
		return Session{}, false
	}
	return s, ok
}

// IsValid reports whether the stored session is usable and carries role
func (m *Manager) IsValid(role string) bool {
	return m.validator.IsValid(role)
}

// Authorized reports whether the session satisfies this variant's required role
func (m *Manager) Authorized() bool {
	return m.validator.IsValid(m.variant.RequiredRole)
}
