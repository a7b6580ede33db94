// Package admin implements the console's use cases on top of the
// authenticated API client.
package admin

import (
	"context"
	"errors"
	"fmt"

	"admin-console-go/internal/apiclient"
	"admin-console-go/internal/config"
	apierrors "admin-console-go/internal/errors"
)

// API is the subset of *apiclient.Client the services use.
type API interface {
	Get(ctx context.Context, endpoint string, opts ...apiclient.CallOption) (*apiclient.Envelope, error)
	Post(ctx context.Context, endpoint string, data any, opts ...apiclient.CallOption) (*apiclient.Envelope, error)
	Patch(ctx context.Context, endpoint string, data any, opts ...apiclient.CallOption) (*apiclient.Envelope, error)
	Delete(ctx context.Context, endpoint string, opts ...apiclient.CallOption) (*apiclient.Envelope, error)
}

var (
	ErrContentNotFound = errors.New("content not found")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrEmptyContent    = errors.New("content is required")
)

// Services bundles every admin use case.
type Services struct {
	Auth    *AuthService
	Users   *UsersService
	Content *ContentService
}

// New wires the services against api and session using the endpoint table.
func New(api API, session apiclient.Session, endpoints config.Endpoints) *Services {
	return &Services{
		Auth:    &AuthService{api: api, session: session, endpoints: endpoints},
		Users:   &UsersService{api: api, endpoints: endpoints},
		Content: &ContentService{api: api, endpoints: endpoints},
	}
}

// notFound marks a 404 with sentinel while keeping the APIError reachable.
func notFound(err error, sentinel error) error {
	if apierrors.IsStatus(err, 404) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
