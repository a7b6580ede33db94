package apiclient

import (
	"net/http"
	"net/url"
)

// callOptions is the resolved options bag of one logical call.
type callOptions struct {
	method           string
	requiresAuth     bool
	retryOnAuthError bool
	headers          http.Header
	body             any
	query            url.Values
}

// CallOption customises a single call.
type CallOption func(*callOptions)

func newCallOptions(opts []CallOption) *callOptions {
	o := &callOptions{
		method:           http.MethodGet,
		requiresAuth:     true,
		retryOnAuthError: true,
		headers:          http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithoutAuth sends the call without a bearer token and disables the
// refresh-and-retry path.
func WithoutAuth() CallOption {
	return func(o *callOptions) { o.requiresAuth = false }
}

// WithoutAuthRetry keeps the bearer token but surfaces a 401 as-is.
func WithoutAuthRetry() CallOption {
	return func(o *callOptions) { o.retryOnAuthError = false }
}

func WithMethod(method string) CallOption {
	return func(o *callOptions) {
		if method != "" {
			o.method = method
		}
	}
}

// WithHeader sets one header, overriding any computed default.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) { o.headers.Set(key, value) }
}

// WithHeaders merges h over the headers set so far.
func WithHeaders(h http.Header) CallOption {
	return func(o *callOptions) {
		for k, vs := range h {
			o.headers.Del(k)
			for _, v := range vs {
				o.headers.Add(k, v)
			}
		}
	}
}

// WithBody sets the request body. A *FormData is sent as multipart, RawBody
// and json.RawMessage are sent verbatim, anything else is JSON encoded.
func WithBody(body any) CallOption {
	return func(o *callOptions) { o.body = body }
}

// WithQuery appends query parameters to the endpoint.
func WithQuery(q url.Values) CallOption {
	return func(o *callOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
	}
}
