package logging

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// WithCall builds a log entry enriched with the fields of one API call.
// Any extras passed in will be merged (extras take precedence on key conflicts).
func WithCall(method, endpoint, requestID string, extras log.Fields) *log.Entry {
	fields := log.Fields{
		"method":   method,
		"endpoint": endpoint,
	}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	for k, v := range extras {
		fields[k] = v
	}
	return log.WithFields(fields)
}

// DurationMS converts a duration to integer milliseconds for logging.
func DurationMS(d time.Duration) int64 { return d.Milliseconds() }

// MaskToken keeps only enough of a secret to correlate log lines.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
