package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"admin-console-go/internal/config"
	"admin-console-go/internal/credential"

	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal backend: /users requires the current valid token and
// /auth/refresh-token issues the configured reply.
type fakeAPI struct {
	t *testing.T

	mu          sync.Mutex
	validToken  string
	refreshBody string
	refreshCode int
	refreshWait time.Duration
	lastRefresh map[string]string
	authHeaders []string

	protectedCalls atomic.Int32
	unauthorized   atomic.Int32
	refreshCalls   atomic.Int32

	// refreshGate, when set, blocks the refresh handler until it is closed.
	refreshGate chan struct{}
	// beforeUnauthorized runs just before a 401 is written.
	beforeUnauthorized func()
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{
		t:           t,
		validToken:  "new123",
		refreshBody: `{"accessToken":"new123"}`,
		refreshCode: http.StatusOK,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users", api.handleProtected)
	mux.HandleFunc("/api/v1/auth/refresh-token", api.handleRefresh)
	mux.HandleFunc("/api/v1/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	mux.HandleFunc("/api/v1/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v1/garbage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	mux.HandleFunc("/api/v1/validation", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Validation failed","statusCode":422,"errors":{"email":["is required"]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) handleProtected(w http.ResponseWriter, r *http.Request) {
	a.protectedCalls.Add(1)
	auth := r.Header.Get("Authorization")
	a.mu.Lock()
	a.authHeaders = append(a.authHeaders, auth)
	valid, hook := a.validToken, a.beforeUnauthorized
	a.mu.Unlock()

	if auth != "Bearer "+valid {
		if hook != nil {
			hook()
		}
		a.unauthorized.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized","statusCode":401}`))
		return
	}
	_, _ = w.Write([]byte(`{"success":true,"data":{"items":[{"id":"u1"}]}}`))
}

func (a *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a.refreshCalls.Add(1)
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	a.mu.Lock()
	a.lastRefresh = body
	code, reply, wait, gate := a.refreshCode, a.refreshBody, a.refreshWait, a.refreshGate
	a.mu.Unlock()

	if r.Header.Get("Authorization") != "" {
		a.t.Errorf("refresh call must not carry a bearer token")
	}
	if gate != nil {
		select {
		case <-gate:
		case <-time.After(3 * time.Second):
		}
	}
	if wait > 0 {
		time.Sleep(wait)
	}
	w.WriteHeader(code)
	_, _ = w.Write([]byte(reply))
}

func (a *fakeAPI) set(fn func(a *fakeAPI)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a)
}

func (a *fakeAPI) seenAuthHeaders() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.authHeaders...)
}

func (a *fakeAPI) lastRefreshBody() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRefresh
}

func testAPIConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:        strings.TrimRight(baseURL, "/") + "/api/v1",
		Endpoints:      config.DefaultEndpoints,
		RequestTimeout: 5 * time.Second,
		RefreshTimeout: 5 * time.Second,
	}
}

func newTestSession(t *testing.T, access, refresh string) *credential.Store {
	t.Helper()
	store, err := credential.NewStore(context.Background(), credential.NewMemoryBackend())
	require.NoError(t, err)
	if access != "" || refresh != "" {
		require.NoError(t, store.SetCredentials(context.Background(), credential.Update{
			AccessToken:  credential.String(access),
			RefreshToken: credential.String(refresh),
		}))
	}
	return store
}

func newTestClient(t *testing.T, srv *httptest.Server, session Session, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithTransport(NewHTTPTransportWithClient(srv.Client()))}, opts...)
	return New(testAPIConfig(srv.URL), session, opts...)
}
