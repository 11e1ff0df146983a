// Package session implements the client side of authentication for the
// storefront and the admin console: persisting the credential issued at
// login, attaching it to outbound API requests, and reacting when the
// remote API stops accepting it.
package session

import (
	"errors"
	"slices"
)

var (
	// ErrMalformedSession is returned by a Store when persisted session data
	// exists but cannot be decoded.
	ErrMalformedSession = errors.New("malformed session data")

	// ErrIncompleteSession is returned by a Store when asked to persist a
	// session without a credential.
	ErrIncompleteSession = errors.New("incomplete session")

	// ErrUnauthorized is returned by the transport when a non-login request
	// was rejected because the credential is missing, invalid, or expired.
	ErrUnauthorized = errors.New("session expired or invalid")
)

// UserProfile describes the authenticated user as returned by the remote API
type UserProfile struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	DisplayName string   `json:"display_name,omitempty"`
}

// HasRole reports whether the profile carries the given role tag
func (p UserProfile) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Name returns the display name, falling back to the username
func (p UserProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Session is the credential and profile pair. The two halves are always
// stored and cleared together.
type Session struct {
	Credential string      `json:"credential"`
	Profile    UserProfile `json:"profile"`
}

// complete reports whether both halves carry the fields validity depends on
func (s Session) complete() bool {
	return s.Credential != "" && s.Profile.ID != "" && s.Profile.Username != ""
}

// normalize makes an empty role set survive serialization as [] rather than null
func (s Session) normalize() Session {
	if s.Profile.Roles == nil {
		s.Profile.Roles = []string{}
	} else {
		s.Profile.Roles = slices.Clone(s.Profile.Roles)
	}
	return s
}
