package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	bearerPrefix    = "Bearer "
	RequestIDHeader = "X-Request-ID"
)

type sessionRequestKey struct{}

// MarkSessionRequest flags a request as part of establishing or ending the
// session (login, logout). A 401 on such a request means the submitted
// credentials were wrong, not that a session expired, so the transport
// passes it through without invalidating anything.
func MarkSessionRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionRequestKey{}, true)
}

func isMarkedSessionRequest(ctx context.Context) bool {
	marked, _ := ctx.Value(sessionRequestKey{}).(bool)
	return marked
}

// Transport attaches the stored credential to every outbound request and
// invalidates the session when the API rejects it.
type Transport struct {
	Base http.RoundTripper

	store        Store
	invalidator  *Invalidator
	loginAPIPath string
	logger       zerolog.Logger
}

// NewTransport creates the authorizing transport. Base defaults to
// http.DefaultTransport when nil.
func NewTransport(store Store, invalidator *Invalidator, loginAPIPath string, logger zerolog.Logger) *Transport {
	return &Transport{
		store:        store,
		invalidator:  invalidator,
		loginAPIPath: loginAPIPath,
		logger:       logger,
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	sent, err := t.authorize(out)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, ulid.Make().String())
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		// No response is not evidence the session is invalid
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if t.isSessionRequest(out) {
			t.logger.Debug().
				Str("path", out.URL.Path).
				Str("request_id", out.Header.Get(RequestIDHeader)).
				Msg("Credentials rejected")
		} else {
			t.logger.Warn().
				Str("method", out.Method).
				Str("path", out.URL.Path).
				Str("request_id", out.Header.Get(RequestIDHeader)).
				Msg("Request rejected as unauthorized")
			t.invalidator.InvalidateIfCurrent(sent, "request rejected as unauthorized")
		}
	}

	return resp, nil
}

// authorize sets or removes the Authorization header from the store and
// returns the credential it attached. Only storage faults are returned; an
// empty or unreadable session just means no header.
func (t *Transport) authorize(req *http.Request) (string, error) {
	req.Header.Del("Authorization")

	s, ok, err := t.store.Read()
	if err != nil {
		if errors.Is(err, ErrMalformedSession) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	if !ok || s.Credential == "" {
		return "", nil
	}
	req.Header.Set("Authorization", bearerPrefix+s.Credential)
	return s.Credential, nil
}

func (t *Transport) isSessionRequest(req *http.Request) bool {
	if isMarkedSessionRequest(req.Context()) {
		return true
	}
	return t.loginAPIPath != "" && req.URL.Path == t.loginAPIPath
}
