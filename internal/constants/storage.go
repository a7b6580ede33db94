package constants

// Persisted keys. The snapshot key holds the full credential state; the two
// token keys mirror individual values for readers that only need one token.
const (
	CredentialSnapshotKey = "auth-store"
	AccessTokenKey        = "access_token"
	RefreshTokenKey       = "refresh_token"
)

// Storage backend names accepted in configuration.
const (
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"
)

// DefaultRedisPrefix namespaces credential keys in a shared redis.
const DefaultRedisPrefix = "admin-console:"
