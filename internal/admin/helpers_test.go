package admin

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"admin-console-go/internal/apiclient"
	"admin-console-go/internal/config"
	"admin-console-go/internal/credential"
	"admin-console-go/internal/mockapi"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	mock    *mockapi.Server
	session *credential.Store
	client  *apiclient.Client
	svc     *Services
}

func newTestEnv(t *testing.T, opts mockapi.Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock := mockapi.New(opts)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	session, err := credential.NewStore(context.Background(), credential.NewMemoryBackend())
	require.NoError(t, err)

	cfg := config.APIConfig{
		BaseURL:        mock.BaseURL(srv.URL),
		Endpoints:      config.DefaultEndpoints,
		RequestTimeout: 5 * time.Second,
		RefreshTimeout: 5 * time.Second,
	}
	client := apiclient.New(cfg, session,
		apiclient.WithTransport(apiclient.NewHTTPTransportWithClient(srv.Client())))

	return &testEnv{
		mock:    mock,
		session: session,
		client:  client,
		svc:     New(client, session, cfg.Endpoints),
	}
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	_, err := e.svc.Auth.SignIn(context.Background(), mockapi.DefaultAdminEmail, mockapi.DefaultAdminPassword)
	require.NoError(t, err)
}
