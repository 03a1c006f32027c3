// Package config loads diskpanel settings through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Data source modes
const (
	ModeAuto       = "auto"
	ModeWMIC       = "wmic"
	ModePartitions = "partitions"
	ModeSample     = "sample"
)

// Config is the full runtime configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DataSource DataSourceConfig `mapstructure:"datasource"`
	Session    SessionConfig    `mapstructure:"session"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Address    string   `mapstructure:"address"`
	RateLimit  float64  `mapstructure:"rate_limit"` // requests per second per IP
	RateBurst  int      `mapstructure:"rate_burst"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

type DataSourceConfig struct {
	Mode    string        `mapstructure:"mode"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "localhost:8080")
	v.SetDefault("server.rate_limit", 100.0)
	v.SetDefault("server.rate_burst", 200)
	v.SetDefault("server.allowed_ips", []string{})
	v.SetDefault("datasource.mode", ModeAuto)
	v.SetDefault("datasource.timeout", 10*time.Second)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 15*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.DataSource.Mode {
	case ModeAuto, ModeWMIC, ModePartitions, ModeSample:
	default:
		return fmt.Errorf("invalid datasource.mode %q (want auto, wmic, partitions or sample)", c.DataSource.Mode)
	}

	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("datasource.timeout must be positive, got %v", c.DataSource.Timeout)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %v", c.Session.TTL)
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must be positive")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	return nil
}
