package config

import "strings"

// mergeEnvVars overlays ADMIN_* environment variables on the loaded file.
// VITE_API_BASE_URL is honoured so a frontend .env can be reused.
func (cm *ConfigManager) mergeEnvVars() {
	if cm.config == nil {
		cm.config = cm.defaultConfig()
	}
	c := cm.config

	envString(&c.APIBaseURL, "ADMIN_API_BASE_URL", "VITE_API_BASE_URL")
	envInt(&c.RequestTimeoutSec, "ADMIN_REQUEST_TIMEOUT_SEC")
	envInt(&c.RefreshTimeoutSec, "ADMIN_REFRESH_TIMEOUT_SEC")
	envInt(&c.RefreshAheadSeconds, "ADMIN_REFRESH_AHEAD_SECONDS")

	envBool(&c.RateLimitEnabled, "ADMIN_RATE_LIMIT_ENABLED")
	if envInt(&c.RateLimitRPS, "ADMIN_RATE_LIMIT_RPS") {
		c.RateLimitEnabled = c.RateLimitRPS > 0
	}
	envInt(&c.RateLimitBurst, "ADMIN_RATE_LIMIT_BURST")

	if envString(&c.StorageBackend, "ADMIN_STORAGE_BACKEND") {
		c.StorageBackend = strings.ToLower(c.StorageBackend)
	}
	envString(&c.StorageDir, "ADMIN_STORAGE_DIR")
	envString(&c.RedisAddr, "ADMIN_REDIS_ADDR")
	envString(&c.RedisPassword, "ADMIN_REDIS_PASSWORD")
	envInt(&c.RedisDB, "ADMIN_REDIS_DB")
	envString(&c.RedisPrefix, "ADMIN_REDIS_PREFIX")
	envInt(&c.RedisKeyTTLSec, "ADMIN_REDIS_KEY_TTL_SEC")

	envBool(&c.Debug, "ADMIN_DEBUG")
	envString(&c.LogLevel, "ADMIN_LOG_LEVEL")
	envString(&c.LogFile, "ADMIN_LOG_FILE")
}
