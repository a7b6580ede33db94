package constants

import "time"

const (
	// RequestTimeout bounds a single HTTP exchange, including reading the body.
	RequestTimeout = 30 * time.Second
	// RefreshTimeout bounds one refresh-token round trip shared by all waiters.
	RefreshTimeout = 15 * time.Second
	// RedisDialTimeout bounds the connectivity probe run when the redis backend is built.
	RedisDialTimeout = 5 * time.Second
	// ConfigReloadDebounce coalesces bursts of file events before reloading config.
	ConfigReloadDebounce = 100 * time.Millisecond
	// ConfigPollInterval is used when fsnotify is unavailable.
	ConfigPollInterval = 5 * time.Second
	// ServerReadHeaderTimeout bounds header reads on the mock API server.
	ServerReadHeaderTimeout = 10 * time.Second
	// ServerShutdownTimeout bounds draining in-flight requests on shutdown.
	ServerShutdownTimeout = 10 * time.Second
)
