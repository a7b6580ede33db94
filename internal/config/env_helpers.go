package config

import (
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// envLookup returns the first non-blank value among keys, trimmed.
func envLookup(keys ...string) (string, string, bool) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return key, v, true
		}
	}
	return "", "", false
}

func envString(dst *string, keys ...string) bool {
	if _, v, ok := envLookup(keys...); ok {
		*dst = v
		return true
	}
	return false
}

// envInt leaves dst untouched when the value is not a number.
func envInt(dst *int, keys ...string) bool {
	key, v, ok := envLookup(keys...)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("env", key).Warnf("ignoring non-numeric value %q", v)
		return false
	}
	*dst = n
	return true
}

func envBool(dst *bool, keys ...string) bool {
	key, v, ok := envLookup(keys...)
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		log.WithField("env", key).Warnf("ignoring non-boolean value %q", v)
		return false
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// cleanEndpointPath turns "users/", "//users" or " /users " into "/users".
func cleanEndpointPath(raw string) string {
	p := strings.Trim(strings.TrimSpace(raw), "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return "/" + strings.Join(kept, "/")
}
