package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string              `json:"token"`
	User  session.UserProfile `json:"user"`
}

// Login exchanges credentials for a session. The request is marked as a
// session request so a 401 is reported as rejected credentials instead of
// an expired session.
func (c *Client) Login(ctx context.Context, identifier, secret string) (session.Session, error) {
	var loginResp LoginResponse
	err := c.do(session.MarkSessionRequest(ctx), http.MethodPost, "/api/auth/login", LoginRequest{
		Identifier: identifier,
		Password:   secret,
	}, &loginResp)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return session.Session{}, fmt.Errorf("login failed: %w", session.ErrCredentialsRejected)
		}
		return session.Session{}, fmt.Errorf("login failed: %w", err)
	}

	return session.Session{
		Credential: loginResp.Token,
		Profile:    loginResp.User,
	}, nil
}

// Logout tells the API the current credential is no longer in use
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(session.MarkSessionRequest(ctx), http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// Me returns the profile of the authenticated user
func (c *Client) Me(ctx context.Context) (*session.UserProfile, error) {
	var profile session.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
