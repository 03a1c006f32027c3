package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	assert.Equal(t, 100.0, cfg.Server.RateLimit)
	assert.Equal(t, 200, cfg.Server.RateBurst)
	assert.Equal(t, ModeAuto, cfg.DataSource.Mode)
	assert.Equal(t, 10*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("datasource.mode", ModeSample)
	v.Set("datasource.timeout", "3s")
	v.Set("server.allowed_ips", []string{"10.0.0.1"})

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ModeSample, cfg.DataSource.Mode)
	assert.Equal(t, 3*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Server.AllowedIPs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown mode", "datasource.mode", "smart"},
		{"zero timeout", "datasource.timeout", "0s"},
		{"negative ttl", "session.ttl", "-1m"},
		{"zero rate", "server.rate_limit", 0},
		{"empty address", "server.address", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
