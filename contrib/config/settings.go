package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/agroguard/agroguard/core/pkg/contracts"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "AGROGUARD"

// Settings is the typed application configuration
type Settings struct {
	API      APISettings            `mapstructure:"api"`
	Log      contracts.LoggerConfig `mapstructure:"log"`
	Redis    contracts.CacheConfig  `mapstructure:"redis"`
	Database DatabaseSettings       `mapstructure:"database"`
	Kafka    contracts.BrokerConfig `mapstructure:"kafka"`
	Alerts   AlertSettings          `mapstructure:"alerts"`
}

// APISettings configures the backend REST client
type APISettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	OAuth   OAuthSettings `mapstructure:"oauth"`
}

// OAuthSettings holds client credentials for the backend. Empty ClientID disables auth.
type OAuthSettings struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Enabled reports whether client credentials are configured
func (o OAuthSettings) Enabled() bool {
	return o.ClientID != ""
}

// DatabaseSettings locates the local SQLite store for drafts and alert history
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// AlertSettings configures alert history output
type AlertSettings struct {
	HistoryLimit int `mapstructure:"history_limit"`
}

// Defaults returns the default value for every key. Every key must be listed here
// for its environment variable to be picked up by Unmarshal.
func Defaults() map[string]any {
	return map[string]any{
		"api.base_url":            "http://localhost:3000/api",
		"api.timeout":             "30s",
		"api.oauth.client_id":     "",
		"api.oauth.client_secret": "",
		"api.oauth.token_url":     "",
		"api.oauth.scopes":        []string{},

		"log.level":  contracts.LogLevelInfo,
		"log.format": contracts.LogFormatConsole,
		"log.output": "stderr",

		"redis.enabled":  false,
		"redis.addr":     "localhost:6379",
		"redis.password": "",
		"redis.database": 0,
		"redis.prefix":   "agroguard:",
		"redis.ttl":      "5m",

		"database.path": "agroguard.db",

		"kafka.enabled":   false,
		"kafka.brokers":   []string{"localhost:9092"},
		"kafka.client_id": "agroguard",
		"kafka.version":   "2.8.0",
		"kafka.topic":     "agroguard.sms.outbound",

		"alerts.history_limit": 20,
	}
}

// Load reads settings from file (or the default search paths when file is empty),
// the environment and the defaults. Non-nil overrides take precedence over all of them.
func Load(file string, overrides map[string]any) (*Settings, error) {
	cfg := DefaultConfig()
	cfg.ConfigFile = file
	cfg.Overrides = overrides

	d, err := NewDriver(cfg)
	if err != nil {
		return nil, err
	}
	return d.Settings()
}

// Settings decodes and checks the current configuration
func (d *Driver) Settings() (*Settings, error) {
	var s Settings
	if err := d.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that cannot be defaulted
func (s *Settings) Validate() error {
	u, err := url.Parse(s.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api.base_url %q must be an absolute http(s) URL", s.API.BaseURL)
	}
	if s.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", s.API.Timeout)
	}
	if s.API.OAuth.Enabled() && s.API.OAuth.TokenURL == "" {
		return fmt.Errorf("config: api.oauth.token_url is required when client_id is set")
	}
	if s.Kafka.Enabled && len(s.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers is required when kafka is enabled")
	}
	return nil
}
