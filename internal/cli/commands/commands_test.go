package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxoffice-dev/boxoffice/internal/apiclient"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

type fakePrompter struct {
	username, password string
	asked              []string
}

func (p *fakePrompter) Username() (string, error) {
	p.asked = append(p.asked, "username")
	if p.username == "" {
		return "", errors.New("username is required in non-interactive mode")
	}
	return p.username, nil
}

func (p *fakePrompter) Password() (string, error) {
	p.asked = append(p.asked, "password")
	if p.password == "" {
		return "", errors.New("password is required in non-interactive mode")
	}
	return p.password, nil
}

// mockAPI accepts alice/secret and root/secret. Tokens stop working once
// revoked is set.
type mockAPI struct {
	server  *httptest.Server
	revoked atomic.Bool
	logouts atomic.Int32
}

func newMockAPI(t *testing.T) *mockAPI {
	t.Helper()

	m := &mockAPI{}
	users := map[string]session.UserProfile{
		"alice": {ID: "1", Username: "alice", Email: "alice@example.com", Roles: []string{"user"}},
		"root":  {ID: "2", Username: "root", Roles: []string{"user", "admin"}, DisplayName: "Box Office Admin"},
	}

	authorized := func(w http.ResponseWriter, r *http.Request) (session.UserProfile, bool) {
		user, ok := users[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer tok-")]
		if m.revoked.Load() || !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return session.UserProfile{}, false
		}
		return user, true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		user, ok := users[req.Identifier]
		if !ok || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(apiclient.LoginResponse{Token: "tok-" + user.Username, User: user})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		m.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if user, ok := authorized(w, r); ok {
			json.NewEncoder(w).Encode(user)
		}
	})
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authorized(w, r); !ok {
			return
		}
		json.NewEncoder(w).Encode([]apiclient.Order{{
			ID:         "ord-77",
			Status:     "paid",
			TotalCents: 9000,
			CreatedAt:  time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
			Tickets:    []apiclient.Ticket{{ID: "t1"}, {ID: "t2"}},
		}})
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func newTestEnv(t *testing.T, variant session.Variant, api *mockAPI) (*Env, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	env, err := newEnv(variant, session.NewMemoryStore(), api.server.URL, "http://localhost:3000", time.Hour, &out, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(env.Close)
	return env, &out
}

func TestLogin_WithFlags(t *testing.T) {
	env, out := newTestEnv(t, session.Storefront(), newMockAPI(t))
	prompter := &fakePrompter{}

	err := runLogin(context.Background(), env, prompter, "alice", "secret")
	require.NoError(t, err)

	assert.Empty(t, prompter.asked)
	assert.Contains(t, out.String(), "✓ Login successful!")
	assert.Contains(t, out.String(), "User: alice (alice@example.com)")
	assert.NotContains(t, out.String(), "Role: Admin")

	sess, ok := env.Manager.GetSession()
	require.True(t, ok)
	assert.Equal(t, "tok-alice", sess.Credential)
}

func TestLogin_FromEnvironment(t *testing.T) {
	t.Setenv("BOXOFFICE_USERNAME", "root")
	t.Setenv("BOXOFFICE_PASSWORD", "secret")
	env, out := newTestEnv(t, session.Console(), newMockAPI(t))

	require.NoError(t, runLogin(context.Background(), env, &fakePrompter{}, "", ""))
	assert.Contains(t, out.String(), "User: Box Office Admin")
	assert.Contains(t, out.String(), "Role: Admin")
}

func TestLogin_Prompts(t *testing.T) {
	env, _ := newTestEnv(t, session.Storefront(), newMockAPI(t))
	prompter := &fakePrompter{username: "alice", password: "secret"}

	require.NoError(t, runLogin(context.Background(), env, prompter, "", ""))
	assert.Equal(t, []string{"username", "password"}, prompter.asked)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		variant  session.Variant
		username string
		password string
		wantErr  string
	}{
		{"wrong password", session.Storefront(), "alice", "nope", "Invalid username or password"},
		{"no admin role", session.Console(), "alice", "secret", "does not have access to the console"},
		{"non-interactive", session.Storefront(), "alice", "", "non-interactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newTestEnv(t, tt.variant, newMockAPI(t))

			err := runLogin(context.Background(), env, &fakePrompter{}, tt.username, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, ok := env.Manager.GetSession()
			assert.False(t, ok)
		})
	}
}

func TestLogout(t *testing.T) {
	api := newMockAPI(t)
	env, out := newTestEnv(t, session.Storefront(), api)

	require.NoError(t, runLogout(context.Background(), env))
	assert.Contains(t, out.String(), "Not logged in.")
	assert.Equal(t, int32(0), api.logouts.Load())

	require.NoError(t, runLogin(context.Background(), env, &fakePrompter{}, "alice", "secret"))
	require.NoError(t, runLogout(context.Background(), env))

	assert.Contains(t, out.String(), "✓ Logged out")
	assert.Equal(t, int32(1), api.logouts.Load())
	_, ok := env.Manager.GetSession()
	assert.False(t, ok)
}

func TestWhoami(t *testing.T) {
	api := newMockAPI(t)
	env, out := newTestEnv(t, session.Storefront(), api)

	err := runWhoami(context.Background(), env, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boxoffice login")

	require.NoError(t, runLogin(context.Background(), env, &fakePrompter{}, "alice", "secret"))
	out.Reset()

	require.NoError(t, runWhoami(context.Background(), env, false))
	assert.Contains(t, out.String(), "Username: alice")
	assert.Contains(t, out.String(), "Email:    alice@example.com")
	assert.Contains(t, out.String(), "Roles:    user")
}

func TestWhoami_RevokedCredential(t *testing.T) {
	api := newMockAPI(t)
	env, out := newTestEnv(t, session.Storefront(), api)
	require.NoError(t, runLogin(context.Background(), env, &fakePrompter{}, "alice", "secret"))

	api.revoked.Store(true)
	out.Reset()

	err := runWhoami(context.Background(), env, false)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
	assert.Equal(t, 1, strings.Count(out.String(), "Your session has expired"))

	_, ok := env.Manager.GetSession()
	assert.False(t, ok)

	// Offline mode only reads what is saved, and nothing is
	assert.Error(t, runWhoami(context.Background(), env, true))
}

func TestOrders(t *testing.T) {
	env, out := newTestEnv(t, session.Storefront(), newMockAPI(t))
	require.NoError(t, runLogin(context.Background(), env, &fakePrompter{}, "alice", "secret"))
	out.Reset()

	require.NoError(t, runOrders(context.Background(), env))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ORDER")
	assert.Contains(t, lines[2], "ord-77")
	assert.Contains(t, lines[2], "$90.00")
	assert.Contains(t, lines[2], "2026-03-14 19:30")
}

func TestOpen(t *testing.T) {
	env, _ := newTestEnv(t, session.Storefront(), newMockAPI(t))

	var opened []string
	open := func(url string) error {
		opened = append(opened, url)
		return nil
	}

	require.NoError(t, runOpen(env, "/orders", open))

	require.NoError(t, runLogin(context.Background(), env, &fakePrompter{}, "alice", "secret"))
	require.NoError(t, runOpen(env, "/orders", open))
	require.NoError(t, runOpen(env, "//evil.example", open))

	assert.Equal(t, []string{
		"http://localhost:3000/login",
		"http://localhost:3000/orders",
		"http://localhost:3000/account",
	}, opened)
}

func TestOpen_BrowserFailure(t *testing.T) {
	env, _ := newTestEnv(t, session.Storefront(), newMockAPI(t))

	err := runOpen(env, "/", func(string) error { return errors.New("no display") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please visit: http://localhost:3000/login")
}

func TestFrontendURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3001", frontendURL(":3001"))
	assert.Equal(t, "http://shop.internal:8000", frontendURL("shop.internal:8000"))
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("BOXOFFICE_CONFIG", "")

	env, err := LoadEnv(&GlobalOptions{Console: true, APIURL: "http://api.test:9000"}, &bytes.Buffer{})
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, session.Console(), env.Variant)
	assert.IsType(t, &session.MemoryStore{}, env.Store)
	assert.Equal(t, "http://localhost:3001", env.FrontendURL)
}
