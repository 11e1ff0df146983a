package session

import (
	"errors"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
)

// Navigator moves the user between locations. After Navigate returns,
// Location must report the new target, even if the move is still pending;
// the Invalidator relies on this to avoid stacking redirects.
type Navigator interface {
	Location() string
	Navigate(target string)
}

// Invalidator ends a session that the server or the periodic check has
// rejected: it clears the store and sends the user to the login entry
// point once. Both the transport and the re-validation timer call it.
type Invalidator struct {
	mu        sync.Mutex
	store     Store
	nav       Navigator
	loginPath string
	armed     bool
	logger    zerolog.Logger
}

// NewInvalidator creates an invalidator redirecting to loginPath via nav
func NewInvalidator(store Store, nav Navigator, loginPath string, logger zerolog.Logger) *Invalidator {
	return &Invalidator{
		store:     store,
		nav:       nav,
		loginPath: loginPath,
		logger:    logger,
	}
}

// Establish runs write and, if it succeeds, records that a usable session
// exists. Both happen under the same lock as Recheck so a periodic check
// cannot observe the new session half written.
func (i *Invalidator) Establish(write func() error) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := write(); err != nil {
		return err
	}
	i.armed = true
	return nil
}

// Disarm records that the session ended deliberately
func (i *Invalidator) Disarm() {
	i.mu.Lock()
	i.armed = false
	i.mu.Unlock()
}

// Armed reports whether a usable session is believed to exist
func (i *Invalidator) Armed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.armed
}

// InvalidateIfCurrent clears the session and redirects to login, but only
// while the stored credential is still sent, the one the rejected request
// carried. A rejection of a credential that has since been replaced or
// removed leaves the store alone. Repeated calls are harmless: clearing an
// empty store is a no-op and no redirect is issued while the current
// location is already the login entry point.
func (i *Invalidator) InvalidateIfCurrent(sent, reason string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	current, err := i.currentCredential()
	if err != nil {
		i.logger.Error().Err(err).Msg("Failed to read session, rejection ignored")
		return false
	}
	if current != sent {
		i.logger.Debug().Str("reason", reason).Msg("Rejected credential no longer stored")
		return false
	}

	i.armed = false
	i.clearAndRedirect(reason)
	return true
}

// Recheck runs check under the lock and invalidates if it reports the
// session unusable while one was believed to exist. A usable session arms
// the invalidator. An error from check changes nothing and is returned.
func (i *Invalidator) Recheck(reason string, check func() (bool, error)) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	valid, err := check()
	if err != nil {
		return false, err
	}
	if valid {
		i.armed = true
		return false, nil
	}
	if !i.armed {
		return false, nil
	}
	i.armed = false
	i.clearAndRedirect(reason)
	return true, nil
}

// currentCredential returns the stored credential. Unreadable data counts
// as no credential, matching what the transport would have attached.
func (i *Invalidator) currentCredential() (string, error) {
	s, ok, err := i.store.Read()
	if err != nil {
		if errors.Is(err, ErrMalformedSession) {
			return "", nil
		}
		return "", err
	}
	if !ok {
		return "", nil
	}
	return s.Credential, nil
}

func (i *Invalidator) clearAndRedirect(reason string) {
	if err := i.store.Clear(); err != nil {
		i.logger.Error().Err(err).Msg("Failed to clear session")
	}

	location := i.nav.Location()
	if IsLoginLocation(location, i.loginPath) {
		i.logger.Debug().Str("reason", reason).Msg("Already at login, redirect suppressed")
		return
	}

	target := LoginURL(i.loginPath, location, true)
	i.logger.Info().
		Str("reason", reason).
		Str("from", location).
		Str("to", target).
		Msg("Session invalidated, redirecting to login")
	i.nav.Navigate(target)
}

// IsLoginLocation reports whether location points at the login entry point
func IsLoginLocation(location, loginPath string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Path == loginPath
}

// LoginURL builds the login entry point URL carrying returnTo so the user
// comes back to it after signing in. expired adds the session-expired notice.
func LoginURL(loginPath, returnTo string, expired bool) string {
	q := url.Values{}
	if returnTo != "" && !IsLoginLocation(returnTo, loginPath) {
		q.Set("redirect", returnTo)
	}
	if expired {
		q.Set("expired", "1")
	}
	if len(q) == 0 {
		return loginPath
	}
	return loginPath + "?" + q.Encode()
}

// SafeRedirect returns target if it is a local absolute path, otherwise
// fallback. Prevents the login redirect parameter from leaving the site.
func SafeRedirect(target, fallback string) string {
	if target == "" || target[0] != '/' || (len(target) > 1 && (target[1] == '/' || target[1] == '\\')) {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
