package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/patrick-jessen/enginectl/internal/constants"
)

// DefaultConfig returns the default enginectl configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			URL:     constants.DefaultEngineURL,
			Timeout: constants.DefaultEngineTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultConfigYAML returns the default configuration as YAML bytes
func DefaultConfigYAML() ([]byte, error) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config to YAML: %w", err)
	}
	return data, nil
}
