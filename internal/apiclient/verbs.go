package apiclient

import (
	"context"
	"net/http"
)

// Get issues a GET.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...CallOption) (*Envelope, error) {
	return c.Do(ctx, endpoint, preset(opts, WithMethod(http.MethodGet))...)
}

// Post issues a POST with data as the body; nil sends no body.
func (c *Client) Post(ctx context.Context, endpoint string, data any, opts ...CallOption) (*Envelope, error) {
	return c.Do(ctx, endpoint, preset(opts, WithMethod(http.MethodPost), withData(data))...)
}

func (c *Client) Put(ctx context.Context, endpoint string, data any, opts ...CallOption) (*Envelope, error) {
	return c.Do(ctx, endpoint, preset(opts, WithMethod(http.MethodPut), withData(data))...)
}

func (c *Client) Patch(ctx context.Context, endpoint string, data any, opts ...CallOption) (*Envelope, error) {
	return c.Do(ctx, endpoint, preset(opts, WithMethod(http.MethodPatch), withData(data))...)
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts ...CallOption) (*Envelope, error) {
	return c.Do(ctx, endpoint, preset(opts, WithMethod(http.MethodDelete))...)
}

func withData(data any) CallOption {
	return func(o *callOptions) {
		if data != nil {
			o.body = data
		}
	}
}

// preset appends the verb's fixed options after the caller's without
// touching the caller's slice.
func preset(opts []CallOption, fixed ...CallOption) []CallOption {
	out := make([]CallOption, 0, len(opts)+len(fixed))
	out = append(out, opts...)
	return append(out, fixed...)
}
