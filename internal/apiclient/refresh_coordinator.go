package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"admin-console-go/internal/constants"
	"admin-console-go/internal/credential"
	"admin-console-go/internal/events"
	"admin-console-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrRefreshFailed wraps every refresh failure. The session has been
	// cleared by the time it is returned.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrNoRefreshToken means there was nothing to refresh with.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrNoAccessToken means the refresh response carried no usable access token.
	ErrNoAccessToken = errors.New("refresh response has no access token")
)

const refreshFlightKey = "refresh"

// Caller is the part of the Client the coordinator needs to reach the
// refresh endpoint.
type Caller interface {
	Do(ctx context.Context, endpoint string, opts ...CallOption) (*Envelope, error)
}

// Session is the credential state the client reads and mutates.
type Session interface {
	AccessToken() string
	RefreshToken() string
	SetCredentials(ctx context.Context, u credential.Update) error
	Clear(ctx context.Context) error
}

// RefreshCoordinator runs at most one refresh at a time. Callers arriving
// while a refresh is in flight share its result.
type RefreshCoordinator struct {
	caller   Caller
	session  Session
	endpoint string
	timeout  time.Duration

	accessExtractor  TokenExtractor
	refreshExtractor TokenExtractor

	publisher events.Publisher

	group    singleflight.Group
	inflight atomic.Bool
}

func NewRefreshCoordinator(caller Caller, session Session, endpoint string, timeout time.Duration) *RefreshCoordinator {
	if timeout <= 0 {
		timeout = constants.RefreshTimeout
	}
	return &RefreshCoordinator{
		caller:           caller,
		session:          session,
		endpoint:         endpoint,
		timeout:          timeout,
		accessExtractor:  AccessTokenExtractor,
		refreshExtractor: RefreshTokenExtractor,
		publisher:        events.NopPublisher{},
	}
}

// Refresh returns a fresh access token. The refresh itself runs detached
// from ctx so one impatient caller cannot fail it for the rest; ctx only
// bounds how long this caller waits.
func (c *RefreshCoordinator) Refresh(ctx context.Context) (string, error) {
	if c.inflight.Load() {
		monitoring.RefreshWaitersTotal.Inc()
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshFlightKey, func() (any, error) {
		c.inflight.Store(true)
		defer c.inflight.Store(false)
		runCtx, cancel := context.WithTimeout(flightCtx, c.timeout)
		defer cancel()
		return c.run(runCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *RefreshCoordinator) run(ctx context.Context) (string, error) {
	start := time.Now()
	entry := log.WithField("component", "refresh")

	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		c.clear(ctx, entry)
		monitoring.RecordRefresh("no_token", time.Since(start))
		entry.Warn("no refresh token available, session cleared")
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoRefreshToken)
	}

	env, err := c.caller.Do(ctx, c.endpoint,
		WithMethod(http.MethodPost),
		WithBody(map[string]string{"refreshToken": refreshToken}),
		WithoutAuth(),
		WithoutAuthRetry(),
	)
	if err != nil {
		c.clear(ctx, entry)
		monitoring.RecordRefresh("failure", time.Since(start))
		entry.WithError(err).Warn("token refresh rejected, session cleared")
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	accessToken := c.accessExtractor.From(env.Raw())
	if accessToken == "" {
		c.clear(ctx, entry)
		monitoring.RecordRefresh("no_access_token", time.Since(start))
		entry.Warn("refresh response carried no access token, session cleared")
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoAccessToken)
	}

	update := credential.Update{AccessToken: &accessToken}
	rotated := false
	if next := c.refreshExtractor.From(env.Raw()); next != "" {
		update.RefreshToken = &next
		rotated = true
	}
	if err := c.session.SetCredentials(ctx, update); err != nil {
		// The new tokens are live in memory; only persistence failed.
		entry.WithError(err).Warn("refreshed tokens not persisted")
	}

	monitoring.RecordRefresh("success", time.Since(start))
	entry.WithFields(log.Fields{
		"rotated":     rotated,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("access token refreshed")
	c.publisher.Publish(ctx, events.TopicTokenRefreshed, map[string]bool{"rotated": rotated}, nil)
	return accessToken, nil
}

func (c *RefreshCoordinator) clear(ctx context.Context, entry *log.Entry) {
	if err := c.session.Clear(ctx); err != nil {
		entry.WithError(err).Warn("failed to clear session after refresh failure")
	}
}
