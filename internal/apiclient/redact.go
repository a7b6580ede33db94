package apiclient

import (
	"net/http"
	"strings"

	"admin-console-go/internal/constants"
	"admin-console-go/internal/logging"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const redacted = "[REDACTED]"

var secretFields = []string{"password", "oldPassword", "newPassword", "refreshToken", "accessToken", "token", "resetToken", "otp"}

// redactBody masks secret fields at the top level and under data before a
// body is logged. Non-JSON bodies are summarised by size only.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return "<non-json body>"
	}
	out := body
	for _, prefix := range []string{"", "data."} {
		for _, field := range secretFields {
			path := prefix + field
			if !gjson.GetBytes(out, path).Exists() {
				continue
			}
			if next, err := sjson.SetBytes(out, path, redacted); err == nil {
				out = next
			}
		}
	}
	return string(out)
}

// redactHeaders flattens h for logging with the bearer token masked.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		v := strings.Join(vs, ", ")
		if k == constants.HeaderAuthorization {
			v = constants.BearerPrefix + logging.MaskToken(strings.TrimPrefix(v, constants.BearerPrefix))
		}
		out[k] = v
	}
	return out
}
