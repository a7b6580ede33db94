package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config is the runtime view of the configuration, grouped by concern.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Logging LoggingConfig
}

// APIConfig controls the API client.
type APIConfig struct {
	BaseURL               string
	Endpoints             Endpoints
	RequestTimeout        time.Duration
	RefreshTimeout        time.Duration
	RefreshAhead          time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	RateLimitEnabled      bool
	RateLimitRPS          int
	RateLimitBurst        int
}

// StorageConfig selects where credentials are persisted.
type StorageConfig struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisKeyTTL   time.Duration
}

// LoggingConfig controls logrus output.
type LoggingConfig struct {
	Debug   bool
	Level   string
	LogFile string
}

var (
	configOnce          sync.Once
	globalConfigManager *ConfigManager
)

// Load loads configuration from the default search locations and environment.
func Load() *Config {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from specified file path
func LoadWithFile(configPath string) *Config {
	configOnce.Do(func() {
		var err error
		globalConfigManager, err = NewConfigManager(configPath)
		if err != nil {
			globalConfigManager = nil
		}
	})

	if globalConfigManager != nil {
		return FromFile(globalConfigManager.GetConfig())
	}

	cm := &ConfigManager{}
	cm.mergeEnvVars()
	return FromFile(cm.config)
}

// GetConfigManager returns the global config manager
func GetConfigManager() *ConfigManager {
	return globalConfigManager
}

// FromFile converts a FileConfig into the runtime Config, filling gaps with defaults.
func FromFile(fc *FileConfig) *Config {
	if fc == nil {
		fc = defaultFileConfig()
	}
	d := defaultFileConfig()

	return &Config{
		API: APIConfig{
			BaseURL:               strings.TrimRight(firstNonEmpty(strings.TrimSpace(fc.APIBaseURL), d.APIBaseURL), "/"),
			Endpoints:             fc.Endpoints.WithDefaults(d.Endpoints),
			RequestTimeout:        seconds(fc.RequestTimeoutSec, d.RequestTimeoutSec),
			RefreshTimeout:        seconds(fc.RefreshTimeoutSec, d.RefreshTimeoutSec),
			RefreshAhead:          time.Duration(max(fc.RefreshAheadSeconds, 0)) * time.Second,
			DialTimeout:           seconds(fc.DialTimeoutSec, d.DialTimeoutSec),
			TLSHandshakeTimeout:   seconds(fc.TLSHandshakeTimeoutSec, d.TLSHandshakeTimeoutSec),
			ResponseHeaderTimeout: seconds(fc.ResponseHeaderTimeoutSec, d.ResponseHeaderTimeoutSec),
			RateLimitEnabled:      fc.RateLimitEnabled,
			RateLimitRPS:          fc.RateLimitRPS,
			RateLimitBurst:        fc.RateLimitBurst,
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(firstNonEmpty(strings.TrimSpace(fc.StorageBackend), d.StorageBackend)),
			Dir:           firstNonEmpty(fc.StorageDir, d.StorageDir),
			RedisAddr:     fc.RedisAddr,
			RedisPassword: fc.RedisPassword,
			RedisDB:       fc.RedisDB,
			RedisPrefix:   firstNonEmpty(fc.RedisPrefix, d.RedisPrefix),
			RedisKeyTTL:   time.Duration(max(fc.RedisKeyTTLSec, 0)) * time.Second,
		},
		Logging: LoggingConfig{
			Debug:   fc.Debug,
			Level:   fc.LogLevel,
			LogFile: fc.LogFile,
		},
	}
}

// String summarises the endpoint table for diagnostics.
func (e Endpoints) String() string {
	return fmt.Sprintf("signin=%s refresh=%s users=%s", e.SignIn, e.RefreshToken, e.Users)
}

// WithDefaults fills every blank path of e from def and normalises the
// leading slash.
func (e Endpoints) WithDefaults(def Endpoints) Endpoints {
	return Endpoints{
		SignIn:          cleanEndpointPath(firstNonEmpty(e.SignIn, def.SignIn)),
		Logout:          cleanEndpointPath(firstNonEmpty(e.Logout, def.Logout)),
		RefreshToken:    cleanEndpointPath(firstNonEmpty(e.RefreshToken, def.RefreshToken)),
		ForgotPassword:  cleanEndpointPath(firstNonEmpty(e.ForgotPassword, def.ForgotPassword)),
		VerifyOTP:       cleanEndpointPath(firstNonEmpty(e.VerifyOTP, def.VerifyOTP)),
		ResetPassword:   cleanEndpointPath(firstNonEmpty(e.ResetPassword, def.ResetPassword)),
		ResendOTP:       cleanEndpointPath(firstNonEmpty(e.ResendOTP, def.ResendOTP)),
		UpdatePassword:  cleanEndpointPath(firstNonEmpty(e.UpdatePassword, def.UpdatePassword)),
		Users:           cleanEndpointPath(firstNonEmpty(e.Users, def.Users)),
		PrivacyPolicy:   cleanEndpointPath(firstNonEmpty(e.PrivacyPolicy, def.PrivacyPolicy)),
		TermsConditions: cleanEndpointPath(firstNonEmpty(e.TermsConditions, def.TermsConditions)),
		AboutApp:        cleanEndpointPath(firstNonEmpty(e.AboutApp, def.AboutApp)),
		Upload:          cleanEndpointPath(firstNonEmpty(e.Upload, def.Upload)),
	}
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
