package credential

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"admin-console-go/internal/constants"
	"admin-console-go/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	*MemoryBackend
	failSet bool
}

func (f *failingBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func newTestStore(t *testing.T, opts ...StoreOption) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	store, err := NewStore(context.Background(), backend, opts...)
	require.NoError(t, err)
	return store, backend
}

func TestNewStore_EmptyBackend(t *testing.T) {
	store, _ := newTestStore(t)
	snap := store.Snapshot()
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.AccessToken)
	assert.Empty(t, snap.RefreshToken)
	assert.False(t, store.IsAuthenticated())
}

func TestSetCredentials_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.SetCredentials(ctx, Update{
		User:         &AuthUser{ID: "u1", Email: "admin@example.com"},
		AccessToken:  String("A1"),
		RefreshToken: String("R1"),
	}))
	require.NoError(t, store.SetCredentials(ctx, Update{AccessToken: String("A2")}))

	snap := store.Snapshot()
	assert.Equal(t, "A2", snap.AccessToken)
	assert.Equal(t, "R1", snap.RefreshToken)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u1", snap.User.ID)
	assert.True(t, snap.IsAuthenticated)
}

func TestSetCredentials_EmptyStringKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.SetCredentials(ctx, Update{AccessToken: String("A1"), RefreshToken: String("R1")}))
	require.NoError(t, store.SetCredentials(ctx, Update{AccessToken: String(""), RefreshToken: String("")}))

	assert.Equal(t, "A1", store.AccessToken())
	assert.Equal(t, "R1", store.RefreshToken())
}

func TestSetCredentials_NormalisesProfile(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SetCredentials(context.Background(), Update{User: &AuthUser{ID: "u1"}}))

	user := store.User()
	require.NotNil(t, user)
	assert.NotNil(t, user.Profile)
	assert.False(t, store.IsAuthenticated())
}

func TestSetCredentials_WritesMirrorsAndSnapshot(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	require.NoError(t, store.SetCredentials(ctx, Update{AccessToken: String("A1"), RefreshToken: String("R1")}))

	access, err := backend.Get(ctx, constants.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "A1", string(access))

	raw, err := backend.Get(ctx, constants.CredentialSnapshotKey)
	require.NoError(t, err)
	var st persistedState
	require.NoError(t, json.Unmarshal(raw, &st))
	require.NotNil(t, st.State.AccessToken)
	assert.Equal(t, "A1", *st.State.AccessToken)
	assert.Nil(t, st.State.User)
}

func TestSetCredentials_PersistFailureReturnedButApplied(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend()}
	store, err := NewStore(context.Background(), backend)
	require.NoError(t, err)

	backend.failSet = true
	err = store.SetCredentials(context.Background(), Update{AccessToken: String("A1")})
	require.Error(t, err)
	assert.Equal(t, "A1", store.AccessToken())
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("no user is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.UpdateUser(ctx, UserPatch{Name: "x"}))
		assert.Nil(t, store.User())
	})

	t.Run("merges fields and profile", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.SetCredentials(ctx, Update{User: &AuthUser{
			ID: "u1", Email: "a@example.com", Name: "Old",
			Profile: &UserProfile{FullName: "Old Name", Bio: "keep"},
		}}))
		require.NoError(t, store.UpdateUser(ctx, UserPatch{
			Name:    "New",
			Profile: UserProfile{FullName: "New Name"},
		}))

		user := store.User()
		assert.Equal(t, "New", user.Name)
		assert.Equal(t, "a@example.com", user.Email)
		assert.Equal(t, "New Name", user.Profile.FullName)
		assert.Equal(t, "keep", user.Profile.Bio)
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	require.NoError(t, store.SetCredentials(ctx, Update{
		User: &AuthUser{ID: "u1"}, AccessToken: String("A1"), RefreshToken: String("R1"),
	}))

	require.NoError(t, store.Clear(ctx))

	snap := store.Snapshot()
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.AccessToken)
	assert.Empty(t, snap.RefreshToken)
	assert.False(t, snap.IsAuthenticated)

	_, err := backend.Get(ctx, constants.AccessTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = backend.Get(ctx, constants.RefreshTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RestoresAcrossInstances(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	first, err := NewStore(ctx, backend)
	require.NoError(t, err)
	require.NoError(t, first.SetCredentials(ctx, Update{
		User: &AuthUser{ID: "u1", Email: "a@example.com"}, AccessToken: String("A1"), RefreshToken: String("R1"),
	}))

	second, err := NewStore(ctx, backend)
	require.NoError(t, err)
	snap := second.Snapshot()
	assert.Equal(t, "A1", snap.AccessToken)
	assert.Equal(t, "R1", snap.RefreshToken)
	assert.True(t, snap.IsAuthenticated)
	require.NotNil(t, snap.User)
	assert.Equal(t, "a@example.com", snap.User.Email)
}

func TestStore_RestoresFromMirrorKeys(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, constants.AccessTokenKey, []byte("A9")))
	require.NoError(t, backend.Set(ctx, constants.RefreshTokenKey, []byte("R9")))

	store, err := NewStore(ctx, backend)
	require.NoError(t, err)
	assert.Equal(t, "A9", store.AccessToken())
	assert.Equal(t, "R9", store.RefreshToken())
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, constants.CredentialSnapshotKey, []byte("{broken")))

	store, err := NewStore(ctx, backend)
	require.NoError(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_PublishesChanges(t *testing.T) {
	ctx := context.Background()
	hub := events.NewHub()
	var (
		mu  sync.Mutex
		got []string
	)
	record := func(_ context.Context, ev events.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.Topic)
		if ce, ok := ev.Payload.(ChangeEvent); ok && ev.Topic == events.TopicCredentialsChanged {
			assert.True(t, ce.HasAccessToken)
		}
	}
	defer hub.Subscribe(events.TopicCredentialsChanged, record)()
	defer hub.Subscribe(events.TopicCredentialsCleared, record)()

	store, _ := newTestStore(t, WithPublisher(hub))
	require.NoError(t, store.SetCredentials(ctx, Update{AccessToken: String("A1")}))
	require.NoError(t, store.Clear(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{events.TopicCredentialsChanged, events.TopicCredentialsCleared}, got)
}

func TestStore_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.SetCredentials(ctx, Update{AccessToken: String("A0"), RefreshToken: String("R0")}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tag := string(rune('a' + i))
				_ = store.SetCredentials(ctx, Update{AccessToken: String("A" + tag), RefreshToken: String("R" + tag)})
			}
		}(i)
	}
	for k := 0; k < 200; k++ {
		snap := store.Snapshot()
		require.Equal(t, snap.AccessToken[1:], snap.RefreshToken[1:])
	}
	wg.Wait()
}
