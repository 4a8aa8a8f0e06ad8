package config

import "time"

// Config is the root configuration for Vocalboard.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Google    GoogleConfig    `yaml:"google"`
	Tunnel    TunnelConfig    `yaml:"tunnel"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GoogleConfig holds the OAuth client used for Calendar synchronization.
// Leave client_id empty to run without the calendar integration.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	CalendarID   string `yaml:"calendar_id"`
}

// TunnelConfig enables an ngrok tunnel so Google can deliver push
// notifications to a machine without a public address.
type TunnelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"authtoken"`
	Domain    string `yaml:"domain"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8520,
			LogLevel: "info",
		},
		Auth: AuthConfig{
			SessionTTL: 7 * 24 * time.Hour,
			BcryptCost: 12,
		},
		Database: DatabaseConfig{
			Path: "~/.config/vocalboard/vocalboard.db",
		},
		Google: GoogleConfig{
			CalendarID: "primary",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 200,
			Burst:             100,
		},
	}
}
