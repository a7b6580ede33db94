package logging

// ErrorKind normalizes error categories for logs/metrics.
// It maps HTTP status codes and presence of error to a short string label.
func ErrorKind(status int, hasErr bool) string {
	if hasErr && status == 0 {
		return "network_error"
	}
	switch {
	case status == 429:
		return "rate_limited"
	case status == 401:
		return "unauthorized"
	case status == 403:
		return "forbidden"
	case status >= 500 && status < 600:
		return "server_5xx"
	case status >= 400 && status < 500:
		return "client_4xx"
	}
	if hasErr {
		return "error"
	}
	return "ok"
}

// StatusClass buckets a status code as "2xx", "4xx", ... or "none".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "none"
	}
	return string(rune('0'+status/100)) + "xx"
}
