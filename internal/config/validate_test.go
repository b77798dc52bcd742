package config

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gatewatch/internal/broadcast"
	"github.com/rileyhilliard/gatewatch/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:        "future version",
			mutate:      func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr:     true,
			errContains: "from the future",
		},
		{
			name:        "empty listen",
			mutate:      func(c *Config) { c.Listen = "" },
			wantErr:     true,
			errContains: "Listen address is empty",
		},
		{
			name:        "listen without port",
			mutate:      func(c *Config) { c.Listen = "localhost" },
			wantErr:     true,
			errContains: "isn't host:port",
		},
		{
			name:        "listen port out of range",
			mutate:      func(c *Config) { c.Listen = ":70000" },
			wantErr:     true,
			errContains: "out of range",
		},
		{
			name:   "listen on all interfaces",
			mutate: func(c *Config) { c.Listen = "0.0.0.0:5555" },
		},
		{
			name:        "provider timeout equal to period",
			mutate:      func(c *Config) { c.ProviderTimeout = time.Second },
			wantErr:     true,
			errContains: "shorter than",
		},
		{
			name:        "zero provider timeout",
			mutate:      func(c *Config) { c.ProviderTimeout = 0 },
			wantErr:     true,
			errContains: "provider_timeout must be positive",
		},
		{
			name:        "negative send timeout",
			mutate:      func(c *Config) { c.SendTimeout = -time.Second },
			wantErr:     true,
			errContains: "send_timeout must be positive",
		},
		{
			name:        "zero keepalive",
			mutate:      func(c *Config) { c.Keepalive = 0 },
			wantErr:     true,
			errContains: "keepalive must be positive",
		},
		{
			name:        "no mounts",
			mutate:      func(c *Config) { c.Mounts = nil },
			wantErr:     true,
			errContains: "No mounts",
		},
		{
			name:        "relative mount",
			mutate:      func(c *Config) { c.Mounts = []string{"data"} },
			wantErr:     true,
			errContains: "not an absolute path",
		},
		{
			name:        "NaN reference voltage",
			mutate:      func(c *Config) { c.Analog.ReferenceVoltage = math.NaN() },
			wantErr:     true,
			errContains: "reference_voltage",
		},
		{
			name:        "zero full scale",
			mutate:      func(c *Config) { c.Analog.FullScale = 0 },
			wantErr:     true,
			errContains: "full_scale",
		},
		{
			name:        "empty device without simulate",
			mutate:      func(c *Config) { c.Analog.Device = "" },
			wantErr:     true,
			errContains: "analog.device is empty",
		},
		{
			name: "empty device with simulate",
			mutate: func(c *Config) {
				c.Analog.Device = ""
				c.Simulate = true
			},
		},
		{
			name:        "unknown codec",
			mutate:      func(c *Config) { c.Viewer.Codec = "msgpack" },
			wantErr:     true,
			errContains: "not supported",
		},
		{
			name:        "http viewer url",
			mutate:      func(c *Config) { c.Viewer.URL = "http://localhost:5555" },
			wantErr:     true,
			errContains: "ws:// or wss://",
		},
		{
			name:   "wss viewer url",
			mutate: func(c *Config) { c.Viewer.URL = "wss://gateway.local/" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestValidate_MessageNotRepeated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Viewer.Codec = "protobuf"

	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Equal(t, 1, strings.Count(err.Error(), "viewer.codec 'protobuf' is not supported"))
}

func TestValidate_ProviderTimeoutBoundIsSamplingPeriod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProviderTimeout = broadcast.Period - time.Millisecond
	assert.NoError(t, Validate(cfg))

	cfg.ProviderTimeout = broadcast.Period
	assert.Error(t, Validate(cfg))
}
