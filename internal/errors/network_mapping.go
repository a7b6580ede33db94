package errors

import "net/http"

// Transport wraps a failure where no response reached the client.
func Transport(err error) *APIError {
	return &APIError{
		StatusCode: 0,
		Message:    MessageNetwork,
		Kind:       KindTransport,
		Cause:      err,
	}
}

// Unexpected wraps any failure that is neither transport nor server-reported.
func Unexpected(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    MessageUnexpected,
		Kind:       KindUnexpected,
		Cause:      err,
	}
}
