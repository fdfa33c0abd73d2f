// Package config loads agroguard settings with Viper.
//
// Precedence, highest first: overrides (command-line flags), AGROGUARD_* environment
// variables, the config file, defaults. Nested keys map onto env names with "."
// replaced by "_", so api.base_url is read from AGROGUARD_API_BASE_URL.
//
// Usage:
//
//	settings, err := config.Load("", map[string]any{"log.level": "debug"})
//	client, err := api.New(settings.API.BaseURL)
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Driver wraps a Viper instance holding the merged configuration
type Driver struct {
	viper *viper.Viper
}

// Config controls where the driver looks for configuration
type Config struct {
	// ConfigFile is an explicit path. When empty, ConfigName is searched in ConfigPaths.
	ConfigFile  string
	ConfigName  string
	ConfigType  string
	ConfigPaths []string

	EnvPrefix    string
	AutomaticEnv bool

	Defaults  map[string]any
	Overrides map[string]any
}

// DefaultConfig searches ./agroguard.yaml and ~/.agroguard/agroguard.yaml
func DefaultConfig() *Config {
	return &Config{
		ConfigName:   "agroguard",
		ConfigType:   "yaml",
		ConfigPaths:  []string{".", "$HOME/.agroguard"},
		EnvPrefix:    EnvPrefix,
		AutomaticEnv: true,
		Defaults:     Defaults(),
	}
}

// NewDriver reads the configuration. A missing file is only an error when
// ConfigFile names it.
func NewDriver(cfg *Config) (*Driver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	v := viper.New()
	if cfg.ConfigFile != "" {
		v.SetConfigFile(cfg.ConfigFile)
	} else {
		v.SetConfigName(cfg.ConfigName)
		if cfg.ConfigType != "" {
			v.SetConfigType(cfg.ConfigType)
		}
		for _, p := range cfg.ConfigPaths {
			v.AddConfigPath(p)
		}
	}

	if cfg.AutomaticEnv {
		v.SetEnvPrefix(cfg.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	for k, val := range cfg.Defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfg.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for k, val := range cfg.Overrides {
		v.Set(k, val)
	}

	return &Driver{viper: v}, nil
}

// Unmarshal decodes the merged configuration into rawVal
func (d *Driver) Unmarshal(rawVal any) error {
	return d.viper.Unmarshal(rawVal)
}

// ConfigFileUsed returns the file that was read, or "" when none was found
func (d *Driver) ConfigFileUsed() string {
	return d.viper.ConfigFileUsed()
}
