package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"admin-console-go/internal/constants"
	"admin-console-go/internal/events"
	"admin-console-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// Store is the single source of truth for the session. Reads are lock-free
// against an immutable snapshot; writers are serialised and persist the full
// snapshot before releasing the lock.
type Store struct {
	backend   Backend
	publisher events.Publisher

	mu      sync.Mutex
	current atomic.Pointer[Credentials]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPublisher broadcasts credential changes on p.
func WithPublisher(p events.Publisher) StoreOption {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewStore restores the persisted session from backend. A missing or
// unreadable snapshot yields an empty session.
func NewStore(ctx context.Context, backend Backend, opts ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("credential backend cannot be nil")
	}
	s := &Store{backend: backend, publisher: events.NopPublisher{}}
	for _, opt := range opts {
		opt(s)
	}

	creds, err := s.restore(ctx)
	if err != nil {
		return nil, err
	}
	s.current.Store(creds)
	return s, nil
}

func (s *Store) restore(ctx context.Context) (*Credentials, error) {
	data, err := s.backend.Get(ctx, constants.CredentialSnapshotKey)
	switch {
	case errors.Is(err, ErrNotFound):
		return s.restoreMirrors(ctx)
	case err != nil:
		return nil, fmt.Errorf("load credential snapshot: %w", err)
	}

	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		log.WithError(err).WithField("backend", s.backend.Name()).Warn("discarding unreadable credential snapshot")
		return &Credentials{}, nil
	}
	creds := &Credentials{User: normalizeUser(st.State.User)}
	if st.State.AccessToken != nil {
		creds.AccessToken = *st.State.AccessToken
	}
	if st.State.RefreshToken != nil {
		creds.RefreshToken = *st.State.RefreshToken
	}
	creds.IsAuthenticated = creds.AccessToken != ""
	return creds, nil
}

// restoreMirrors picks up tokens written by tools that only know the mirror keys.
func (s *Store) restoreMirrors(ctx context.Context) (*Credentials, error) {
	creds := &Credentials{}
	if v, err := s.backend.Get(ctx, constants.AccessTokenKey); err == nil {
		creds.AccessToken = string(v)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	if v, err := s.backend.Get(ctx, constants.RefreshTokenKey); err == nil {
		creds.RefreshToken = string(v)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	creds.IsAuthenticated = creds.AccessToken != ""
	return creds, nil
}

func (s *Store) load() *Credentials {
	if c := s.current.Load(); c != nil {
		return c
	}
	return &Credentials{}
}

// Snapshot returns a copy of the current credentials.
func (s *Store) Snapshot() Credentials {
	c := *s.load()
	c.User = c.User.Clone()
	return c
}

func (s *Store) AccessToken() string { return s.load().AccessToken }

func (s *Store) RefreshToken() string { return s.load().RefreshToken }

func (s *Store) IsAuthenticated() bool { return s.load().IsAuthenticated }

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *AuthUser { return s.load().User.Clone() }

// BackendName reports which medium the store persists to.
func (s *Store) BackendName() string { return s.backend.Name() }

// SetCredentials applies a partial update. Tokens that are nil or empty keep
// their previous value; a nil user keeps the previous user.
func (s *Store) SetCredentials(ctx context.Context, u Update) error {
	s.mu.Lock()
	prev := s.load()
	next := *prev
	if u.User != nil {
		next.User = normalizeUser(u.User)
	}
	if u.AccessToken != nil && *u.AccessToken != "" {
		next.AccessToken = *u.AccessToken
	}
	if u.RefreshToken != nil && *u.RefreshToken != "" {
		next.RefreshToken = *u.RefreshToken
	}
	next.IsAuthenticated = next.AccessToken != ""
	s.current.Store(&next)

	err := s.persist(ctx, &next)
	if u.AccessToken != nil && *u.AccessToken != "" {
		err = errors.Join(err, s.write(ctx, constants.AccessTokenKey, []byte(*u.AccessToken)))
	}
	if u.RefreshToken != nil && *u.RefreshToken != "" {
		err = errors.Join(err, s.write(ctx, constants.RefreshTokenKey, []byte(*u.RefreshToken)))
	}
	s.mu.Unlock()

	s.publish(ctx, events.TopicCredentialsChanged, &next, "set")
	return err
}

// UpdateUser merges patch into the current user. Without a user it does nothing.
func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) error {
	s.mu.Lock()
	prev := s.load()
	if prev.User == nil {
		s.mu.Unlock()
		return nil
	}
	next := *prev
	user := prev.User.Clone()
	if user.Profile == nil {
		user.Profile = &UserProfile{}
	}
	if patch.Email != "" {
		user.Email = patch.Email
	}
	if patch.Name != "" {
		user.Name = patch.Name
	}
	if patch.Role != "" {
		user.Role = patch.Role
	}
	if patch.IsVerified != nil {
		user.IsVerified = *patch.IsVerified
	}
	mergeProfile(user.Profile, patch.Profile)
	next.User = user
	s.current.Store(&next)

	err := s.persist(ctx, &next)
	s.mu.Unlock()

	s.publish(ctx, events.TopicCredentialsChanged, &next, "user")
	return err
}

// Clear wipes the session and removes the mirror keys.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	empty := &Credentials{}
	s.current.Store(empty)

	err := s.persist(ctx, empty)
	for _, key := range []string{constants.AccessTokenKey, constants.RefreshTokenKey} {
		if derr := s.backend.Delete(ctx, key); derr != nil {
			err = errors.Join(err, fmt.Errorf("delete %s: %w", key, derr))
		}
	}
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).WithField("backend", s.backend.Name()).Warn("failed to clear persisted credentials")
	}
	s.publish(ctx, events.TopicCredentialsCleared, empty, "clear")
	return err
}

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }

func (s *Store) persist(ctx context.Context, c *Credentials) error {
	var st persistedState
	st.State.User = c.User
	if c.AccessToken != "" {
		st.State.AccessToken = &c.AccessToken
	}
	if c.RefreshToken != "" {
		st.State.RefreshToken = &c.RefreshToken
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.write(ctx, constants.CredentialSnapshotKey, data)
}

func (s *Store) write(ctx context.Context, key string, value []byte) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		monitoring.CredentialWritesTotal.WithLabelValues(s.backend.Name(), "error").Inc()
		log.WithError(err).WithFields(log.Fields{"backend": s.backend.Name(), "key": key}).Warn("failed to persist credentials")
		return fmt.Errorf("persist %s: %w", key, err)
	}
	monitoring.CredentialWritesTotal.WithLabelValues(s.backend.Name(), "ok").Inc()
	return nil
}

func (s *Store) publish(ctx context.Context, topic string, c *Credentials, reason string) {
	ev := ChangeEvent{
		HasAccessToken:  c.AccessToken != "",
		HasRefreshToken: c.RefreshToken != "",
		Reason:          reason,
	}
	if c.User != nil {
		ev.UserID = c.User.ID
	}
	s.publisher.Publish(ctx, topic, ev, map[string]string{"backend": s.backend.Name()})
}

func normalizeUser(u *AuthUser) *AuthUser {
	if u == nil {
		return nil
	}
	cp := u.Clone()
	if cp.Profile == nil {
		cp.Profile = &UserProfile{}
	}
	return cp
}

func mergeProfile(dst *UserProfile, src UserProfile) {
	if src.FullName != "" {
		dst.FullName = src.FullName
	}
	if src.ProfilePicture != "" {
		dst.ProfilePicture = src.ProfilePicture
	}
	if src.CoverImage != "" {
		dst.CoverImage = src.CoverImage
	}
	if src.Bio != "" {
		dst.Bio = src.Bio
	}
}
