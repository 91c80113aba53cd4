package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/patrick-jessen/enginectl/internal/constants"
)

type Config struct {
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
}

type EngineConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

type HistoryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

func newViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")

	defaults := DefaultConfig()
	v.SetDefault("engine.url", defaults.Engine.URL)
	v.SetDefault("engine.timeout", defaults.Engine.Timeout)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("history.enabled", defaults.History.Enabled)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path on fs. A missing file yields the
// defaults; environment variables such as ENGINECTL_ENGINE_URL override both.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := newViper(fs)

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
		if exists {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return decode(v)
}

// LoadFromYAML loads config from YAML bytes - helper for tests
func LoadFromYAML(data []byte) (*Config, error) {
	v := newViper(afero.NewMemMapFs())
	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Engine.URL == "" {
		return errors.New("engine.url is required")
	}
	u, err := url.Parse(c.Engine.URL)
	if err != nil {
		return fmt.Errorf("invalid engine.url '%s': %w", c.Engine.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid engine.url '%s': scheme must be http or https", c.Engine.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid engine.url '%s': missing host", c.Engine.URL)
	}

	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level '%s': %w", c.Logging.Level, err)
	}

	return nil
}

// MarshalYAML writes the timeout as a duration string such as "5s".
func (e EngineConfig) MarshalYAML() (any, error) {
	return struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	}{
		URL:     e.URL,
		Timeout: e.Timeout.String(),
	}, nil
}
