package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportFixture struct {
	store  *MemoryStore
	nav    *recordingNavigator
	client *http.Client
}

func newTransportFixture(t *testing.T, location string) *transportFixture {
	t.Helper()

	store := NewMemoryStore()
	nav := newRecordingNavigator(location)
	invalidator := NewInvalidator(store, nav, DefaultLoginPath, zerolog.Nop())
	transport := NewTransport(store, invalidator, DefaultLoginAPIPath, zerolog.Nop())

	return &transportFixture{
		store:  store,
		nav:    nav,
		client: &http.Client{Transport: transport},
	}
}

func TestTransport_AttachesCredential(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/orders")
	require.NoError(t, f.store.Write(aliceSession()))

	resp, err := f.client.Get(server.URL + "/api/orders")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok1", gotAuth)
	assert.Len(t, gotRequestID, 26)
}

func TestTransport_RemovesStaleHeaderWithoutSession(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/")

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/concerts", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer stale")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, gotAuth)
	assert.Equal(t, "Bearer stale", req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestTransport_UnauthorizedInvalidatesAndRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/orders/42")
	require.NoError(t, f.store.Write(aliceSession()))

	resp, err := f.client.Get(server.URL + "/api/orders/42")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, ok, err := f.store.Read()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"/login?expired=1&redirect=%2Forders%2F42"}, f.nav.Events())
}

func TestTransport_LoginRejectionIsPassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tests := []struct {
		name string
		path string
		ctx  context.Context
	}{
		{name: "login path", path: DefaultLoginAPIPath, ctx: context.Background()},
		{name: "marked request", path: "/api/v2/sessions", ctx: MarkSessionRequest(context.Background())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransportFixture(t, "/account")
			require.NoError(t, f.store.Write(aliceSession()))

			req, err := http.NewRequestWithContext(tt.ctx, http.MethodPost, server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := f.client.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			got, ok, err := f.store.Read()
			require.NoError(t, err)
			require.True(t, ok, "existing session must survive a rejected login")
			assert.Equal(t, aliceSession(), got)
			assert.Empty(t, f.nav.Events())
		})
	}
}

func TestTransport_NoRedirectFromLoginPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/login?redirect=%2Faccount")
	require.NoError(t, f.store.Write(aliceSession()))

	resp, err := f.client.Get(server.URL + "/api/auth/me")
	require.NoError(t, err)
	resp.Body.Close()

	_, ok, _ := f.store.Read()
	assert.False(t, ok)
	assert.Empty(t, f.nav.Events())
}

func TestTransport_OtherFailuresLeaveSessionAlone(t *testing.T) {
	statuses := []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer server.Close()

			f := newTransportFixture(t, "/orders")
			require.NoError(t, f.store.Write(aliceSession()))

			resp, err := f.client.Get(server.URL + "/api/orders")
			require.NoError(t, err)
			resp.Body.Close()

			_, ok, _ := f.store.Read()
			assert.True(t, ok)
			assert.Empty(t, f.nav.Events())
		})
	}
}

func TestTransport_UnreachableLeavesSessionAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := newTransportFixture(t, "/orders")
	require.NoError(t, f.store.Write(aliceSession()))

	_, err := f.client.Get(url + "/api/orders")
	require.Error(t, err)

	_, ok, _ := f.store.Read()
	assert.True(t, ok)
	assert.Empty(t, f.nav.Events())
}

func TestTransport_StorageFaultFailsRequest(t *testing.T) {
	fault := errors.New("keychain locked")
	store := &failingStore{err: fault}
	nav := newRecordingNavigator("/")
	transport := NewTransport(store, NewInvalidator(store, nav, DefaultLoginPath, zerolog.Nop()), DefaultLoginAPIPath, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "http://example.invalid/api/orders", nil)
	_, err := transport.RoundTrip(req)
	assert.ErrorIs(t, err, fault)
}

func TestTransport_ConcurrentRejectionsRedirectOnce(t *testing.T) {
	var (
		arrived sync.WaitGroup
		release = make(chan struct{})
	)
	arrived.Add(3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived.Done()
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/orders")
	require.NoError(t, f.store.Write(aliceSession()))

	var done sync.WaitGroup
	for i := 0; i < 3; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			resp, err := f.client.Get(server.URL + "/api/orders")
			if err == nil {
				resp.Body.Close()
			}
		}()
	}

	arrived.Wait()
	close(release)
	done.Wait()

	assert.Equal(t, []string{"/login?expired=1&redirect=%2Forders"}, f.nav.Events())
	_, ok, _ := f.store.Read()
	assert.False(t, ok)
}

func TestTransport_RejectionOfReplacedCredentialKeepsNewSession(t *testing.T) {
	var (
		arrived = make(chan string, 1)
		release = make(chan struct{})
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- r.Header.Get("Authorization")
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/orders")
	require.NoError(t, f.store.Write(aliceSession()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := f.client.Get(server.URL + "/api/orders")
		if err == nil {
			resp.Body.Close()
		}
	}()

	assert.Equal(t, "Bearer tok1", <-arrived)

	// The user logs out and back in while the old request is in flight
	require.NoError(t, f.store.Clear())
	require.NoError(t, f.store.Write(adminSession()))

	close(release)
	<-done

	assert.Empty(t, f.nav.Events())
	got, ok, err := f.store.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, adminSession(), got)
}

func TestTransport_RejectionAfterLogoutDoesNotRedirect(t *testing.T) {
	var (
		arrived = make(chan struct{}, 1)
		release = make(chan struct{})
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := newTransportFixture(t, "/orders")
	require.NoError(t, f.store.Write(aliceSession()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := f.client.Get(server.URL + "/api/orders")
		if err == nil {
			resp.Body.Close()
		}
	}()

	<-arrived
	require.NoError(t, f.store.Clear())
	close(release)
	<-done

	assert.Empty(t, f.nav.Events())
}
