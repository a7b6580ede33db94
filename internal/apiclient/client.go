package apiclient

import (
	"context"
	"net/http"
	"time"

	"admin-console-go/internal/config"
	"admin-console-go/internal/constants"
	"admin-console-go/internal/credential"
	apierrors "admin-console-go/internal/errors"
	"admin-console-go/internal/events"
	"admin-console-go/internal/logging"
	"admin-console-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// Client is the authenticated API facade. Every failure it returns is an
// *errors.APIError.
type Client struct {
	builder      *Builder
	transport    Transport
	session      Session
	refresher    *RefreshCoordinator
	refreshAhead time.Duration
	now          func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default net/http transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithEventPublisher announces successful refreshes on p.
func WithEventPublisher(p events.Publisher) Option {
	return func(c *Client) {
		if p != nil {
			c.refresher.publisher = p
		}
	}
}

// WithClock overrides time.Now for the proactive refresh window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a client for cfg backed by session.
func New(cfg config.APIConfig, session Session, opts ...Option) *Client {
	c := &Client{
		builder:      NewBuilder(cfg.BaseURL),
		session:      session,
		refreshAhead: cfg.RefreshAhead,
		now:          time.Now,
	}
	c.refresher = NewRefreshCoordinator(c, session, cfg.Endpoints.RefreshToken, cfg.RefreshTimeout)
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg)
	}
	return c
}

// Refresher exposes the coordinator, e.g. to force a refresh from tooling.
func (c *Client) Refresher() *RefreshCoordinator { return c.refresher }

// Do performs one logical call. A 401 on an authenticated call triggers a
// shared refresh and exactly one replay with the new token. When the session
// already moved past the token that was rejected, the replay uses the
// current token without refreshing again.
func (c *Client) Do(ctx context.Context, endpoint string, opts ...CallOption) (*Envelope, error) {
	o := newCallOptions(opts)
	authRetry := o.requiresAuth && o.retryOnAuthError

	if authRetry && c.refreshAhead > 0 {
		c.refreshIfExpiring(ctx)
	}

	sent := c.session.AccessToken()
	resp, err := c.send(ctx, endpoint, o, sent)
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		return c.parse(endpoint, o, resp)
	}

	if resp.StatusCode == http.StatusUnauthorized && authRetry {
		token := c.session.AccessToken()
		var rerr error
		if token == "" || token == sent {
			token, rerr = c.refresher.Refresh(ctx)
		} else {
			log.WithField("endpoint", endpoint).Debug("session refreshed during call, replaying with current token")
		}
		if rerr == nil {
			retry, err := c.send(ctx, endpoint, o, token)
			if err != nil {
				monitoring.AuthRetriesTotal.WithLabelValues("transport_error").Inc()
				return nil, err
			}
			if retry.OK() {
				monitoring.AuthRetriesTotal.WithLabelValues("success").Inc()
				return c.parse(endpoint, o, retry)
			}
			monitoring.AuthRetriesTotal.WithLabelValues("failure").Inc()
			resp = retry
		} else {
			log.WithError(rerr).WithField("endpoint", endpoint).Debug("refresh did not yield a token")
		}
	}

	apiErr := apierrors.FromResponse(resp.StatusCode, resp.Status, resp.Body)
	monitoring.APIErrorsTotal.WithLabelValues(string(apiErr.Kind)).Inc()
	logging.WithCall(o.method, endpoint, resp.Header.Get(constants.HeaderRequestID), log.Fields{
		"status":     resp.StatusCode,
		"error_kind": logging.ErrorKind(resp.StatusCode, false),
	}).Debug(apiErr.Message)
	return nil, apiErr
}

// send builds and dispatches one exchange. Failures are already mapped.
func (c *Client) send(ctx context.Context, endpoint string, o *callOptions, token string) (*Response, error) {
	desc, err := c.builder.Build(endpoint, o, token)
	if err != nil {
		monitoring.APIErrorsTotal.WithLabelValues(string(apierrors.KindUnexpected)).Inc()
		logging.WithCall(o.method, endpoint, "", nil).WithError(err).Error("failed to build request")
		return nil, apierrors.Unexpected(err)
	}

	entry := logging.WithCall(desc.Method, endpoint, desc.RequestID, nil)
	if log.IsLevelEnabled(log.DebugLevel) {
		fields := log.Fields{"url": desc.URL, "headers": redactHeaders(desc.Header)}
		if desc.Form != nil {
			fields["body"] = "<multipart form>"
		} else if len(desc.Body) > 0 {
			fields["body"] = redactBody(desc.Body)
		}
		entry.WithFields(fields).Debug("api request")
	}

	start := time.Now()
	resp, err := c.transport.RoundTrip(ctx, desc)
	if err != nil {
		monitoring.APIErrorsTotal.WithLabelValues(string(apierrors.KindTransport)).Inc()
		entry.WithError(err).WithField("error_kind", logging.ErrorKind(0, true)).Warn("network error")
		return nil, apierrors.Transport(err)
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		entry.WithFields(log.Fields{
			"status":      resp.StatusCode,
			"duration_ms": logging.DurationMS(time.Since(start)),
			"body":        redactBody(resp.Body),
		}).Debug("api response")
	}
	return resp, nil
}

func (c *Client) parse(endpoint string, o *callOptions, resp *Response) (*Envelope, error) {
	env, err := parseEnvelope(resp.Body)
	if err != nil {
		monitoring.APIErrorsTotal.WithLabelValues(string(apierrors.KindUnexpected)).Inc()
		logging.WithCall(o.method, endpoint, "", log.Fields{"status": resp.StatusCode}).WithError(err).Error("unreadable success body")
		return nil, apierrors.Unexpected(err)
	}
	return env, nil
}

// refreshIfExpiring refreshes ahead of time when the current access token is
// a JWT inside the configured window. Failures are left for the 401 path.
func (c *Client) refreshIfExpiring(ctx context.Context) {
	token := c.session.AccessToken()
	if token == "" || c.session.RefreshToken() == "" {
		return
	}
	if !credential.ExpiresWithin(token, c.refreshAhead, c.now()) {
		return
	}
	if _, err := c.refresher.Refresh(ctx); err != nil {
		log.WithError(err).WithField("component", "refresh").Debug("proactive refresh failed")
	}
}
