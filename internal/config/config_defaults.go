package config

import (
	"os"
	"path/filepath"

	"admin-console-go/internal/constants"
)

// DefaultAPIBaseURL matches the development backend.
const DefaultAPIBaseURL = "http://localhost:3000/api/v1"

// DefaultEndpoints is the endpoint table of the admin API.
var DefaultEndpoints = Endpoints{
	SignIn:          "/auth/signin",
	Logout:          "/user/logout",
	RefreshToken:    "/auth/refresh-token",
	ForgotPassword:  "/auth/forgot-password",
	VerifyOTP:       "/auth/verify-otp-forgot-password",
	ResetPassword:   "/auth/reset-password",
	ResendOTP:       "/auth/forgot-password",
	UpdatePassword:  "/auth/update-password",
	Users:           "/users",
	PrivacyPolicy:   "/privacy-policy",
	TermsConditions: "/terms-and-conditions",
	AboutApp:        "/about-app",
	Upload:          "/auth/upload",
}

func (cm *ConfigManager) defaultConfig() *FileConfig {
	return defaultFileConfig()
}

func defaultFileConfig() *FileConfig {
	return &FileConfig{
		APIBaseURL:        DefaultAPIBaseURL,
		Endpoints:         DefaultEndpoints,
		RequestTimeoutSec: int(constants.RequestTimeout.Seconds()),
		RefreshTimeoutSec: int(constants.RefreshTimeout.Seconds()),

		DialTimeoutSec:           int(constants.DefaultDialTimeout.Seconds()),
		TLSHandshakeTimeoutSec:   int(constants.DefaultTLSHandshakeTimeout.Seconds()),
		ResponseHeaderTimeoutSec: int(constants.DefaultResponseHeaderTimeout.Seconds()),
		RateLimitEnabled:         false,
		RateLimitRPS:             10,
		RateLimitBurst:           20,

		StorageBackend: constants.StorageBackendFile,
		StorageDir:     defaultStorageDir(),
		RedisPrefix:    constants.DefaultRedisPrefix,

		LogLevel: "warn",
	}
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "admin-console")
	}
	return ".admin-console"
}
