package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"admin-console-go/internal/constants"

	"github.com/redis/go-redis/v9"
)

// RedisBackendConfig configures the redis credential backend.
type RedisBackendConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// KeyTTL expires the stored session after inactivity. Zero keeps keys forever.
	KeyTTL time.Duration
}

// RedisBackend stores keys as plain strings under a prefix, so several
// console instances can share one session.
type RedisBackend struct {
	client *redis.Client
	prefix string
	keyTTL time.Duration
}

// NewRedisBackend connects and pings the server before returning.
func NewRedisBackend(cfg *RedisBackendConfig) (*RedisBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBackend{client: client, prefix: prefix, keyTTL: cfg.KeyTTL}, nil
}

func (r *RedisBackend) key(k string) string { return r.prefix + k }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, r.keyTTL).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisBackend) Name() string { return constants.StorageBackendRedis }

func (r *RedisBackend) Close() error { return r.client.Close() }
