package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"admin-console-go/internal/config"
	"admin-console-go/internal/constants"
)

// ErrNotFound is returned by a Backend when the key has never been written
// or was deleted.
var ErrNotFound = errors.New("credential: key not found")

// Backend is the key/value medium the Store persists to.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", constants.StorageBackendFile:
		return NewFileBackend(cfg.Dir)
	case constants.StorageBackendRedis:
		return NewRedisBackend(&RedisBackendConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			KeyTTL:   cfg.RedisKeyTTL,
		})
	case constants.StorageBackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
