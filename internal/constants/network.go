package constants

import "time"

// HTTP client connection pool settings.
const (
	DefaultMaxIdleConns        = 64
	DefaultMaxIdleConnsPerHost = 16
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultKeepAlive           = 30 * time.Second
)

// HTTP timeouts.
const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultExpectContinueTimeout = 2 * time.Second
)

// Header names used by the API client.
const (
	HeaderAuthorization  = "Authorization"
	HeaderContentType    = "Content-Type"
	HeaderAccept         = "Accept"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderRequestID      = "X-Request-ID"

	ContentTypeJSON = "application/json"
	BearerPrefix    = "Bearer "
)
