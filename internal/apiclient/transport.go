package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"admin-console-go/internal/config"
	"admin-console-go/internal/constants"
	"admin-console-go/internal/logging"
	"admin-console-go/internal/monitoring"
	"admin-console-go/internal/monitoring/tracing"

	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/time/rate"
)

// Response is what the server sent back, body fully read.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r != nil && r.StatusCode >= 200 && r.StatusCode < 300 }

// Transport performs one network exchange. A non-2xx status is a normal
// Response; only the absence of any response is an error.
type Transport interface {
	RoundTrip(ctx context.Context, req *RequestDescriptor) (*Response, error)
}

// TransportError means no response was obtained.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPTransport builds a pooled client from the API settings. The rate
// limiter is only installed when enabled.
func NewHTTPTransport(cfg config.APIConfig) *HTTPTransport {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   durationOr(cfg.DialTimeout, constants.DefaultDialTimeout),
			KeepAlive: constants.DefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   durationOr(cfg.TLSHandshakeTimeout, constants.DefaultTLSHandshakeTimeout),
		ResponseHeaderTimeout: durationOr(cfg.ResponseHeaderTimeout, constants.DefaultResponseHeaderTimeout),
		ExpectContinueTimeout: constants.DefaultExpectContinueTimeout,
		MaxIdleConns:          constants.DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   constants.DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       constants.DefaultIdleConnTimeout,
	}
	t := &HTTPTransport{
		client: &http.Client{Transport: tr, Timeout: durationOr(cfg.RequestTimeout, constants.RequestTimeout)},
	}
	if cfg.RateLimitEnabled && cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = cfg.RateLimitRPS
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	return t
}

// NewHTTPTransportWithClient wraps an existing client, for tests and embedding.
func NewHTTPTransportWithClient(c *http.Client) *HTTPTransport {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPTransport{client: c}
}

func (t *HTTPTransport) RoundTrip(ctx context.Context, req *RequestDescriptor) (*Response, error) {
	fail := func(err error) error { return &TransportError{Method: req.Method, URL: req.URL, Err: err} }

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fail(err)
		}
	}

	ctx, span := tracing.StartClientSpan(ctx, "transport", req.Method, req.URL, req.RequestID)
	start := time.Now()
	status := 0
	var rtErr error
	defer func() {
		tracing.EndClientSpan(span, status, rtErr)
		monitoring.RecordAPIRequest(req.Method, logging.StatusClass(status), time.Since(start))
	}()

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	var reader io.Reader
	if req.Body != nil {
		reader = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		rtErr = fail(err)
		return nil, rtErr
	}
	httpReq.Header = header
	tracing.InjectHeaders(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := t.client.Do(httpReq)
	if err != nil {
		rtErr = fail(err)
		return nil, rtErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		rtErr = fail(fmt.Errorf("read response body: %w", err))
		return nil, rtErr
	}
	status = resp.StatusCode
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
