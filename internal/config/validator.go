package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"admin-console-go/internal/constants"

	log "github.com/sirupsen/logrus"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s=%s]: %s", e.Field, e.Value, e.Message)
}

// ValidationResult holds the results of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// AddError adds a validation error
func (r *ValidationResult) AddError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
	r.Valid = false
}

// AddWarning adds a validation warning
func (r *ValidationResult) AddWarning(field, value, message string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// Validate validates the configuration and returns validation results
func (c *Config) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	// Validate API base URL
	if c.API.BaseURL == "" {
		result.AddError("api_base_url", c.API.BaseURL, "base URL is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		result.AddError("api_base_url", c.API.BaseURL, "must be an absolute http(s) URL")
	} else if u.Scheme != "http" && u.Scheme != "https" {
		result.AddError("api_base_url", c.API.BaseURL, "scheme must be http or https")
	} else if u.Scheme == "http" && !isLoopback(u.Hostname()) {
		result.AddWarning("api_base_url", c.API.BaseURL, "tokens will be sent over plain http")
	}

	// Validate storage backend
	validBackends := []string{constants.StorageBackendFile, constants.StorageBackendRedis, constants.StorageBackendMemory}
	if !contains(validBackends, c.Storage.Backend) {
		result.AddError("storage_backend", c.Storage.Backend,
			fmt.Sprintf("must be one of: %s", strings.Join(validBackends, ", ")))
	}

	switch c.Storage.Backend {
	case constants.StorageBackendRedis:
		if c.Storage.RedisAddr == "" {
			result.AddError("redis_addr", c.Storage.RedisAddr, "required when using redis backend")
		}
	case constants.StorageBackendFile:
		if c.Storage.Dir == "" {
			result.AddError("storage_dir", c.Storage.Dir, "required when using file backend")
		}
	case constants.StorageBackendMemory:
		result.AddWarning("storage_backend", c.Storage.Backend, "session will not survive a restart")
	}

	// Validate timeouts
	if c.API.RequestTimeout < time.Second || c.API.RequestTimeout > 10*time.Minute {
		result.AddWarning("request_timeout_sec", c.API.RequestTimeout.String(),
			"request_timeout_sec should be between 1 and 600")
	}
	if c.API.RefreshTimeout > c.API.RequestTimeout {
		result.AddWarning("refresh_timeout_sec", c.API.RefreshTimeout.String(),
			"refresh timeout longer than request timeout")
	}
	if c.API.RefreshAhead < 0 {
		result.AddError("refresh_ahead_seconds", c.API.RefreshAhead.String(), "must not be negative")
	}

	// Validate rate limiting
	if c.API.RateLimitEnabled {
		if c.API.RateLimitRPS <= 0 {
			result.AddError("rate_limit_rps", strconv.Itoa(c.API.RateLimitRPS),
				"must be positive when rate limiting is enabled")
		}
		if c.API.RateLimitBurst <= 0 {
			result.AddError("rate_limit_burst", strconv.Itoa(c.API.RateLimitBurst),
				"must be positive when rate limiting is enabled")
		}
	}

	if lvl := strings.TrimSpace(c.Logging.Level); lvl != "" {
		if _, err := log.ParseLevel(lvl); err != nil {
			result.AddWarning("log_level", lvl, "unknown level, falling back to warn")
		}
	}

	return result
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ValidateAndExpandPaths validates and expands file paths in configuration
func (c *Config) ValidateAndExpandPaths() error {
	var err error

	// Expand storage directory
	if c.Storage.Dir != "" {
		c.Storage.Dir, err = expandPath(c.Storage.Dir)
		if err != nil {
			return fmt.Errorf("invalid storage_dir path: %v", err)
		}
	}

	// Expand log file destination
	if c.Logging.LogFile != "" {
		c.Logging.LogFile, err = expandPath(c.Logging.LogFile)
		if err != nil {
			return fmt.Errorf("invalid log_file path: %v", err)
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in file paths
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %v", err)
		}
		path = filepath.Join(home, path[2:])
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot convert to absolute path: %v", err)
	}

	return absPath, nil
}
