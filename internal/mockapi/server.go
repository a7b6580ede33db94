// Package mockapi is an in-memory stand-in for the admin REST API, used for
// local development and end-to-end tests of the client.
package mockapi

import (
	"crypto/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"admin-console-go/internal/config"
	mw "admin-console-go/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Default admin account.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "password123"
	DefaultOTP           = "123456"
	DefaultBasePath      = "/api/v1"
)

// Options tunes the fake's behaviour.
type Options struct {
	BasePath      string
	Endpoints     config.Endpoints
	AdminEmail    string
	AdminPassword string
	// AccessTokenTTL of zero issues tokens that never expire.
	AccessTokenTTL time.Duration
	// RefreshDelay is slept inside the refresh handler before answering.
	RefreshDelay        time.Duration
	RotateRefreshTokens bool
	// RequirePasswordChange makes sign-in answer 201 with a reset token.
	RequirePasswordChange bool
	RequestLog            bool
	SeedUsers             bool
}

func (o Options) withDefaults() Options {
	if o.BasePath == "" {
		o.BasePath = DefaultBasePath
	}
	o.BasePath = "/" + strings.Trim(o.BasePath, "/")
	o.Endpoints = o.Endpoints.WithDefaults(config.DefaultEndpoints)
	if o.AdminEmail == "" {
		o.AdminEmail = DefaultAdminEmail
	}
	if o.AdminPassword == "" {
		o.AdminPassword = DefaultAdminPassword
	}
	return o
}

// Server holds the fake's state. All handlers are safe for concurrent use.
type Server struct {
	opts   Options
	secret []byte
	now    func() time.Time

	mu            sync.Mutex
	password      string
	accessTokens  map[string]time.Time
	refreshTokens map[string]bool
	resetTokens   map[string]string
	otps          map[string]string
	users         []*remoteUser
	privacy       *document
	terms         map[string]*document
	about         map[string]*document

	refreshCalls atomic.Int64
	failRefresh  atomic.Bool

	engine *gin.Engine
}

// New builds a fake API server.
func New(opts Options) *Server {
	opts = opts.withDefaults()
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	s := &Server{
		opts:          opts,
		secret:        secret,
		now:           time.Now,
		password:      opts.AdminPassword,
		accessTokens:  make(map[string]time.Time),
		refreshTokens: make(map[string]bool),
		resetTokens:   make(map[string]string),
		otps:          make(map[string]string),
		terms:         make(map[string]*document),
		about:         make(map[string]*document),
	}
	if opts.SeedUsers {
		s.users = seedUsers()
	}
	s.engine = s.buildEngine()
	return s
}

// Handler returns the gin engine serving the fake.
func (s *Server) Handler() http.Handler { return s.engine }

// BaseURL joins host (e.g. an httptest server URL) with the base path.
func (s *Server) BaseURL(host string) string { return strings.TrimRight(host, "/") + s.opts.BasePath }

// RefreshCalls counts requests that reached the refresh handler.
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// FailRefresh makes every refresh answer 401 while set.
func (s *Server) FailRefresh(fail bool) { s.failRefresh.Store(fail) }

// ExpireAccessTokens invalidates every issued access token, so the next
// authenticated call gets a 401.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok := range s.accessTokens {
		s.accessTokens[tok] = time.Time{}
	}
}

// IssueSession mints a token pair without going through sign-in.
func (s *Server) IssueSession() (accessToken, refreshToken string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accessToken, err = s.issueAccessLocked()
	if err != nil {
		return "", "", err
	}
	return accessToken, s.issueRefreshLocked(), nil
}

func (s *Server) buildEngine() *gin.Engine {
	engine := gin.New()
	_ = engine.SetTrustedProxies(nil)
	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics(), mw.CORS())
	if s.opts.RequestLog {
		engine.Use(mw.RequestLogger())
	}

	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET("/metrics", mw.MetricsHandler)

	ep := s.opts.Endpoints
	public := engine.Group(s.opts.BasePath)
	public.POST(ep.SignIn, s.handleSignIn)
	public.POST(ep.RefreshToken, s.handleRefresh)
	public.POST(ep.ForgotPassword, s.handleForgotPassword)
	if ep.ResendOTP != ep.ForgotPassword {
		public.POST(ep.ResendOTP, s.handleForgotPassword)
	}
	public.POST(ep.VerifyOTP, s.handleVerifyOTP)
	public.POST(ep.ResetPassword, s.handleResetPassword)

	private := engine.Group(s.opts.BasePath, mw.BearerAuth(s.validAccessToken))
	private.POST(ep.Logout, s.handleLogout)
	private.POST(ep.UpdatePassword, s.handleUpdatePassword)
	private.POST(ep.Upload, s.handleUpload)

	users := strings.TrimRight(ep.Users, "/")
	private.GET(users, s.handleListUsers)
	private.GET(users+"/:id", s.handleGetUser)
	private.DELETE(users+"/:id", s.handleDeleteUser)
	private.PATCH(users+"/:id/admin-block", s.handleToggleBlock)

	private.GET(ep.PrivacyPolicy, s.handleGetPrivacy)
	private.POST(ep.PrivacyPolicy, s.handleSavePrivacy)
	private.GET(ep.TermsConditions, s.handleGetTerms)
	private.POST(ep.TermsConditions, s.handleSaveTerms)
	private.GET(ep.AboutApp, s.handleGetAbout)
	private.POST(ep.AboutApp, s.handleSaveAbout)

	engine.NoRoute(func(c *gin.Context) { fail(c, http.StatusNotFound, "Route not found", nil) })
	return engine
}

// fail writes the API's error envelope.
func fail(c *gin.Context, status int, message string, fieldErrors map[string][]string) {
	body := gin.H{"statusCode": status, "message": message, "success": false}
	if len(fieldErrors) > 0 {
		body["errors"] = fieldErrors
	}
	c.AbortWithStatusJSON(status, body)
}
