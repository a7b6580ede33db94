package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies where a failure originated.
type Kind string

const (
	// KindTransport means no response reached the client.
	KindTransport Kind = "transport"
	// KindAuth is a 401 that survived the refresh-and-retry path.
	KindAuth Kind = "auth"
	// KindApplication is any other non-2xx reported by the server.
	KindApplication Kind = "application"
	// KindUnexpected covers everything else (malformed bodies, local bugs).
	KindUnexpected Kind = "unexpected"
)

// Default messages for synthesised failures.
const (
	MessageNetwork    = "Network error. Please check your connection."
	MessageUnexpected = "An unexpected error occurred"
	MessageFallback   = "An error occurred"
	MessageRequest    = "Request failed"
)

// APIError is the single failure shape surfaced by the API client.
type APIError struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
	Kind       Kind                `json:"-"`
	Cause      error               `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil && e.Kind != KindApplication {
		return fmt.Sprintf("api error %d: %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Cause }

// FieldErrors returns the messages reported for a single form field.
func (e *APIError) FieldErrors(field string) []string {
	if e == nil || e.Errors == nil {
		return nil
	}
	return e.Errors[field]
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := As(err)
	return ok && apiErr.StatusCode == status
}
