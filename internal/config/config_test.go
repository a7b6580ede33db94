package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"admin-console-go/internal/constants"
	"admin-console-go/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewConfigManager_DefaultsWhenFileMissing(t *testing.T) {
	cm, err := NewConfigManager(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	defer cm.Close()

	cfg := FromFile(cm.GetConfig())
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "/auth/refresh-token", cfg.API.Endpoints.RefreshToken)
	assert.Equal(t, constants.StorageBackendFile, cfg.Storage.Backend)
	assert.Equal(t, constants.RequestTimeout, cfg.API.RequestTimeout)
	assert.Equal(t, time.Duration(0), cfg.API.RefreshAhead)
}

func TestNewConfigManager_LoadsYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
api_base_url: https://admin.example.com/api/v1/
refresh_ahead_seconds: 30
endpoints:
  users: members/
storage_backend: Redis
redis_addr: 127.0.0.1:6379
debug: true
`)
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	defer cm.Close()

	cfg := FromFile(cm.GetConfig())
	assert.Equal(t, "https://admin.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.RefreshAhead)
	assert.Equal(t, "/members", cfg.API.Endpoints.Users)
	assert.Equal(t, "/auth/signin", cfg.API.Endpoints.SignIn)
	assert.Equal(t, constants.StorageBackendRedis, cfg.Storage.Backend)
	assert.Equal(t, constants.DefaultRedisPrefix, cfg.Storage.RedisPrefix)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, path, cm.Path())
}

func TestNewConfigManager_LoadsJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"api_base_url":"http://127.0.0.1:9000","rate_limit_enabled":true,"rate_limit_rps":5,"rate_limit_burst":1}`)
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	defer cm.Close()

	cfg := FromFile(cm.GetConfig())
	assert.Equal(t, "http://127.0.0.1:9000", cfg.API.BaseURL)
	assert.True(t, cfg.API.RateLimitEnabled)
	assert.Equal(t, 5, cfg.API.RateLimitRPS)
}

func TestNewConfigManager_RejectsBrokenFile(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{not json`)
	_, err := NewConfigManager(path)
	require.Error(t, err)
}

func TestMergeEnvVars(t *testing.T) {
	t.Run("admin base url wins over vite", func(t *testing.T) {
		t.Setenv("ADMIN_API_BASE_URL", "https://one.example.com")
		t.Setenv("VITE_API_BASE_URL", "https://two.example.com")
		cm := &ConfigManager{}
		cm.mergeEnvVars()
		assert.Equal(t, "https://one.example.com", cm.config.APIBaseURL)
	})

	t.Run("vite base url used as fallback", func(t *testing.T) {
		t.Setenv("ADMIN_API_BASE_URL", "")
		t.Setenv("VITE_API_BASE_URL", "https://two.example.com")
		cm := &ConfigManager{}
		cm.mergeEnvVars()
		assert.Equal(t, "https://two.example.com", cm.config.APIBaseURL)
	})

	t.Run("storage and logging", func(t *testing.T) {
		t.Setenv("ADMIN_STORAGE_BACKEND", "MEMORY")
		t.Setenv("ADMIN_REDIS_DB", "3")
		t.Setenv("ADMIN_DEBUG", "yes")
		t.Setenv("ADMIN_RATE_LIMIT_RPS", "7")
		t.Setenv("ADMIN_REFRESH_AHEAD_SECONDS", "45")
		cm := &ConfigManager{}
		cm.mergeEnvVars()
		assert.Equal(t, constants.StorageBackendMemory, cm.config.StorageBackend)
		assert.Equal(t, 3, cm.config.RedisDB)
		assert.True(t, cm.config.Debug)
		assert.Equal(t, 7, cm.config.RateLimitRPS)
		assert.True(t, cm.config.RateLimitEnabled)
		assert.Equal(t, 45, cm.config.RefreshAheadSeconds)
	})

	t.Run("garbage numbers ignored", func(t *testing.T) {
		t.Setenv("ADMIN_REDIS_DB", "three")
		t.Setenv("ADMIN_REQUEST_TIMEOUT_SEC", "soon")
		cm := &ConfigManager{}
		cm.mergeEnvVars()
		assert.Equal(t, 0, cm.config.RedisDB)
		assert.Equal(t, int(constants.RequestTimeout.Seconds()), cm.config.RequestTimeoutSec)
	})
}

func TestUpdateConfig_PersistsAndPublishes(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "api_base_url: http://localhost:3000/api/v1\n")
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	defer cm.Close()

	hub := events.NewHub()
	cm.SetEventPublisher(hub)
	got := make(chan ConfigChangeEvent, 1)
	unsubscribe := hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, ev events.Event) {
		got <- ev.Payload.(ConfigChangeEvent)
	})
	defer unsubscribe()

	var callbackURL string
	cm.OnChange(func(fc *FileConfig) { callbackURL = fc.APIBaseURL })

	require.NoError(t, cm.UpdateConfig(func(fc *FileConfig) { fc.APIBaseURL = "https://prod.example.com" }))
	assert.Equal(t, "https://prod.example.com", callbackURL)

	select {
	case ev := <-got:
		assert.Equal(t, "https://prod.example.com", ev.Config.APIBaseURL)
		require.NotNil(t, ev.Previous)
		assert.Equal(t, "http://localhost:3000/api/v1", ev.Previous.APIBaseURL)
	default:
		t.Fatal("expected config.updated event")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://prod.example.com")
}

func TestCheckAndReload_PicksUpNewerFile(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "rate_limit_rps: 1\n")
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	defer cm.Close()

	changed := make(chan int, 1)
	cm.OnChange(func(fc *FileConfig) {
		select {
		case changed <- fc.RateLimitRPS:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("rate_limit_rps: 9\n"), 0o600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	cm.checkAndReload()

	select {
	case rps := <-changed:
		assert.Equal(t, 9, rps)
	case <-time.After(2 * time.Second):
		t.Fatal("reload callback not invoked")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config { return FromFile(defaultFileConfig()) }

	t.Run("defaults are valid", func(t *testing.T) {
		res := base().Validate()
		assert.True(t, res.Valid, "%v", res.Errors)
	})

	t.Run("relative base url rejected", func(t *testing.T) {
		c := base()
		c.API.BaseURL = "/api/v1"
		res := c.Validate()
		assert.False(t, res.Valid)
		assert.Equal(t, "api_base_url", res.Errors[0].Field)
	})

	t.Run("plain http to remote host warns", func(t *testing.T) {
		c := base()
		c.API.BaseURL = "http://admin.example.com"
		res := c.Validate()
		assert.True(t, res.Valid)
		require.NotEmpty(t, res.Warnings)
		assert.Equal(t, "api_base_url", res.Warnings[0].Field)
	})

	t.Run("redis needs addr", func(t *testing.T) {
		c := base()
		c.Storage.Backend = constants.StorageBackendRedis
		res := c.Validate()
		assert.False(t, res.Valid)
		assert.Equal(t, "redis_addr", res.Errors[0].Field)
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := base()
		c.Storage.Backend = "mongodb"
		assert.False(t, c.Validate().Valid)
	})

	t.Run("rate limit needs positive values", func(t *testing.T) {
		c := base()
		c.API.RateLimitEnabled = true
		c.API.RateLimitRPS = 0
		assert.False(t, c.Validate().Valid)
	})
}

func TestValidateAndExpandPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	c := FromFile(defaultFileConfig())
	c.Storage.Dir = "~/admin-console-test"
	require.NoError(t, c.ValidateAndExpandPaths())
	assert.Equal(t, filepath.Join(home, "admin-console-test"), c.Storage.Dir)
}

func TestCleanEndpointPath(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"/":              "",
		"users":          "/users",
		" /users/ ":      "/users",
		"//auth//signin": "/auth/signin",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanEndpointPath(in), "input %q", in)
	}
}

func TestDecodeFileConfig_UnknownExtension(t *testing.T) {
	fc, err := decodeFileConfig("settings.conf", []byte("api_base_url: https://yaml.example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://yaml.example.com", fc.APIBaseURL)

	fc, err = decodeFileConfig("settings.conf", []byte(`{"storage_backend":"memory"}`))
	require.NoError(t, err)
	assert.Equal(t, "memory", fc.StorageBackend)

	_, err = decodeFileConfig("settings.conf", []byte("\t{broken"))
	assert.Error(t, err)
}

func TestUpdateConfig_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	defer cm.Close()

	require.NoError(t, cm.UpdateConfig(func(fc *FileConfig) { fc.StorageBackend = constants.StorageBackendMemory }))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"storage_backend": "memory"`)
}

func TestDiffFileConfig(t *testing.T) {
	prev := defaultFileConfig()
	next := defaultFileConfig()
	next.APIBaseURL = "https://prod.example.com"
	next.RedisPassword = "secret"

	changes := diffFileConfig(prev, next)
	require.Len(t, changes, 1)
	assert.Equal(t, "api_base_url", changes[0].field)
	assert.Equal(t, "https://prod.example.com", changes[0].new)
}
