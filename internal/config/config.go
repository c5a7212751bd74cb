// Package config loads server configuration from the environment.
// Every knob has a default, overridable via STOCKSIM_* variables; the
// bare PORT variable also works, as hosting platforms set it.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORSOrigins is a comma-separated whitelist. Empty allows all
	// origins.
	CORSOrigins string `mapstructure:"cors_origins"`
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOCKSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("cors_origins", "")

	if err := v.BindEnv("port", "STOCKSIM_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind port: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Origins splits the CORS whitelist. A nil result allows all origins.
func (c *Config) Origins() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
