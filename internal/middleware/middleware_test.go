package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func TestRequestID(t *testing.T) {
	t.Run("Generate request ID when not provided", func(t *testing.T) {
		router := newRouter(RequestID())
		var seen string
		router.GET("/test", func(c *gin.Context) {
			seen = RequestIDFrom(c)
			c.String(http.StatusOK, "OK")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		rid := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, rid)
		assert.Equal(t, rid, seen)
		_, err := uuid.Parse(rid)
		assert.NoError(t, err)
	})

	t.Run("Use provided request ID", func(t *testing.T) {
		router := newRouter(RequestID())
		router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "custom-request-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "custom-request-id", w.Header().Get(RequestIDHeader))
	})

	t.Run("Replace oversized request ID", func(t *testing.T) {
		router := newRouter(RequestID())
		router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("Generate unique IDs for different requests", func(t *testing.T) {
		router := newRouter(RequestID())
		router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		w1, w2 := httptest.NewRecorder(), httptest.NewRecorder()
		router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
		router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEqual(t, w1.Header().Get(RequestIDHeader), w2.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	router := newRouter(Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("test panic") })
	router.GET("/normal", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"statusCode":500,"message":"An unexpected error occurred"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/normal", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryWithWriter(t *testing.T) {
	var got any
	router := newRouter(RecoveryWithWriter(func(c *gin.Context, err any) { got = err }))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", got)
}

func TestCORS(t *testing.T) {
	router := newRouter(CORS())
	router.GET("/users", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/users", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestBearerAuth(t *testing.T) {
	router := newRouter(BearerAuth(func(tok string) bool { return tok == "good" }))
	router.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextAccessToken)) })

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization token not provided"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Authorization token not provided"},
		{"rejected token", "Bearer bad", http.StatusUnauthorized, "Unauthorized"},
		{"accepted token", "bearer good", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "good", w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), tc.msg)
				assert.Contains(t, w.Body.String(), `"statusCode":401`)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  BEARER   abc "))
	assert.Empty(t, BearerToken("Bearer"))
	assert.Empty(t, BearerToken("Token abc"))
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	router := newRouter(RequestID(), RequestLogger(), Metrics())
	router.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "ok"}) })
	router.GET("/metrics", MetricsHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `admin_console_mock_http_requests_total{method="GET",route="/ok",status_class="2xx"}`), body)
}
