package errors

import "encoding/json"

// ToJSON renders the failure in the same envelope the API uses, so CLI
// output in --json mode matches what the server would have returned.
func (e *APIError) ToJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success    bool                `json:"success"`
		StatusCode int                 `json:"statusCode"`
		Message    string              `json:"message"`
		Errors     map[string][]string `json:"errors,omitempty"`
	}{
		Success:    false,
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Errors:     e.Errors,
	})
}

// IsRetryable reports whether a manual resubmit may succeed.
func (e *APIError) IsRetryable() bool {
	if e.Kind == KindTransport {
		return true
	}
	switch e.StatusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
