package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// errorBody mirrors the error envelope returned by the admin API.
type errorBody struct {
	Message    string              `json:"message"`
	StatusCode int                 `json:"statusCode"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// FromResponse maps a non-2xx response to an APIError. When the body cannot
// be parsed, the message is synthesised from the status line.
func FromResponse(statusCode int, status string, body []byte) *APIError {
	kind := KindApplication
	if statusCode == http.StatusUnauthorized {
		kind = KindAuth
	}

	var parsed errorBody
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		parsed = errorBody{
			Message:    firstNonEmpty(statusText(statusCode, status), MessageFallback),
			StatusCode: statusCode,
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    firstNonEmpty(strings.TrimSpace(parsed.Message), MessageRequest),
		Errors:     parsed.Errors,
		Kind:       kind,
	}
}

// New builds an application failure with an explicit status and message.
func New(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message, Kind: KindApplication}
}

// statusText strips the numeric prefix net/http puts in Response.Status.
func statusText(code int, status string) string {
	status = strings.TrimSpace(status)
	if prefix := http.StatusText(code); prefix != "" && strings.HasSuffix(status, prefix) {
		return prefix
	}
	if i := strings.IndexByte(status, ' '); i >= 0 {
		return strings.TrimSpace(status[i+1:])
	}
	return status
}

func firstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
