package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"admin-console-go/internal/config"
	"admin-console-go/internal/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "k", []byte("v1")))
	require.NoError(t, b.Set(ctx, "k", []byte("v2")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))
	_, err = b.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "creds")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	exerciseBackend(t, b)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestFileBackend_PermissionsAndNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, b.Set(context.Background(), constants.CredentialSnapshotKey, []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "auth-store.json", entries[0].Name())

	info, err := os.Stat(filepath.Join(dir, "auth-store.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileBackend_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b1, err := NewFileBackend(dir)
	require.NoError(t, err)
	s1, err := NewStore(ctx, b1)
	require.NoError(t, err)
	require.NoError(t, s1.SetCredentials(ctx, Update{AccessToken: String("A1"), RefreshToken: String("R1")}))

	b2, err := NewFileBackend(dir)
	require.NoError(t, err)
	s2, err := NewStore(ctx, b2)
	require.NoError(t, err)
	assert.Equal(t, "A1", s2.AccessToken())
	assert.Equal(t, "R1", s2.RefreshToken())
}

func newMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func TestRedisBackend(t *testing.T) {
	mr := newMiniRedis(t)
	b, err := NewRedisBackend(&RedisBackendConfig{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer b.Close()

	exerciseBackend(t, b)

	require.NoError(t, b.Set(context.Background(), "auth-store", []byte("x")))
	assert.True(t, mr.Exists("test:auth-store"))
}

func TestRedisBackend_KeyTTL(t *testing.T) {
	mr := newMiniRedis(t)
	b, err := NewRedisBackend(&RedisBackendConfig{Addr: mr.Addr(), KeyTTL: time.Minute})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Set(context.Background(), "k", []byte("v")))
	mr.FastForward(2 * time.Minute)
	_, err = b.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisBackend_StoreSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr := newMiniRedis(t)

	b1, err := NewRedisBackend(&RedisBackendConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer b1.Close()
	s1, err := NewStore(ctx, b1)
	require.NoError(t, err)
	require.NoError(t, s1.SetCredentials(ctx, Update{User: &AuthUser{ID: "u1"}, AccessToken: String("A1")}))

	b2, err := NewRedisBackend(&RedisBackendConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer b2.Close()
	s2, err := NewStore(ctx, b2)
	require.NoError(t, err)
	assert.Equal(t, "A1", s2.AccessToken())
	assert.Equal(t, "u1", s2.User().ID)
}

func TestNewRedisBackend_Validation(t *testing.T) {
	_, err := NewRedisBackend(nil)
	require.Error(t, err)
	_, err = NewRedisBackend(&RedisBackendConfig{})
	require.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(config.StorageConfig{Backend: constants.StorageBackendMemory})
	require.NoError(t, err)
	assert.Equal(t, constants.StorageBackendMemory, b.Name())

	b, err = NewBackend(config.StorageConfig{Backend: constants.StorageBackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, constants.StorageBackendFile, b.Name())

	_, err = NewBackend(config.StorageConfig{Backend: "etcd"})
	require.Error(t, err)
}
