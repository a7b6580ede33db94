package config

// FileConfig represents the configuration loaded from file
type FileConfig struct {
	// API settings
	APIBaseURL          string    `yaml:"api_base_url" json:"api_base_url"`
	Endpoints           Endpoints `yaml:"endpoints" json:"endpoints"`
	RequestTimeoutSec   int       `yaml:"request_timeout_sec" json:"request_timeout_sec"`
	RefreshTimeoutSec   int       `yaml:"refresh_timeout_sec" json:"refresh_timeout_sec"`
	RefreshAheadSeconds int       `yaml:"refresh_ahead_seconds" json:"refresh_ahead_seconds"`

	// Transport settings
	DialTimeoutSec           int  `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	TLSHandshakeTimeoutSec   int  `yaml:"tls_handshake_timeout_sec" json:"tls_handshake_timeout_sec"`
	ResponseHeaderTimeoutSec int  `yaml:"response_header_timeout_sec" json:"response_header_timeout_sec"`
	RateLimitEnabled         bool `yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RateLimitRPS             int  `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst           int  `yaml:"rate_limit_burst" json:"rate_limit_burst"`

	// Credential storage
	StorageBackend string `yaml:"storage_backend" json:"storage_backend"`
	StorageDir     string `yaml:"storage_dir" json:"storage_dir"`
	RedisAddr      string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword  string `yaml:"redis_password" json:"redis_password"`
	RedisDB        int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix    string `yaml:"redis_prefix" json:"redis_prefix"`
	RedisKeyTTLSec int    `yaml:"redis_key_ttl_sec" json:"redis_key_ttl_sec"`

	// Logging
	Debug    bool   `yaml:"debug" json:"debug"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

// Endpoints is the table of API paths, relative to the base URL.
type Endpoints struct {
	SignIn          string `yaml:"sign_in" json:"sign_in"`
	Logout          string `yaml:"logout" json:"logout"`
	RefreshToken    string `yaml:"refresh_token" json:"refresh_token"`
	ForgotPassword  string `yaml:"forgot_password" json:"forgot_password"`
	VerifyOTP       string `yaml:"verify_otp" json:"verify_otp"`
	ResetPassword   string `yaml:"reset_password" json:"reset_password"`
	ResendOTP       string `yaml:"resend_otp" json:"resend_otp"`
	UpdatePassword  string `yaml:"update_password" json:"update_password"`
	Users           string `yaml:"users" json:"users"`
	PrivacyPolicy   string `yaml:"privacy_policy" json:"privacy_policy"`
	TermsConditions string `yaml:"terms" json:"terms"`
	AboutApp        string `yaml:"about_app" json:"about_app"`
	Upload          string `yaml:"upload" json:"upload"`
}
