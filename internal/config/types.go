package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete gatewatch.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Listen is the TCP address the WebSocket endpoint binds to.
	Listen string `yaml:"listen" mapstructure:"listen"`

	// ProviderTimeout bounds each individual host fact call. It must be
	// shorter than the one-second sampling period.
	ProviderTimeout time.Duration `yaml:"provider_timeout" mapstructure:"provider_timeout"`

	// SendTimeout bounds a single send to a single observer.
	SendTimeout time.Duration `yaml:"send_timeout" mapstructure:"send_timeout"`

	// Keepalive is how long a client may go without answering a ping
	// before it is dropped.
	Keepalive time.Duration `yaml:"keepalive" mapstructure:"keepalive"`

	// Mounts are the filesystems reported for disk usage. The first one
	// that can be read is published.
	Mounts []string `yaml:"mounts" mapstructure:"mounts"`

	// Simulate serves fixed analog readings instead of reading the ADC.
	Simulate bool `yaml:"simulate" mapstructure:"simulate"`

	Analog AnalogConfig `yaml:"analog" mapstructure:"analog"`
	Viewer ViewerConfig `yaml:"viewer" mapstructure:"viewer"`
}

// AnalogConfig describes the ADC the sensor channels are read from.
type AnalogConfig struct {
	// Device is the IIO device directory.
	Device string `yaml:"device" mapstructure:"device"`

	// FullScale is the raw value that corresponds to a reading of 1.0.
	FullScale int `yaml:"full_scale" mapstructure:"full_scale"`

	// ReferenceVoltage converts a ratiometric reading to volts.
	ReferenceVoltage float64 `yaml:"reference_voltage" mapstructure:"reference_voltage"`
}

// ViewerConfig controls `gatewatch watch`.
type ViewerConfig struct {
	// URL of the gatewatch endpoint to connect to.
	URL string `yaml:"url" mapstructure:"url"`

	// Codec to negotiate: "json" or "cbor".
	Codec string `yaml:"codec" mapstructure:"codec"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		Listen:          ":5555",
		ProviderTimeout: 800 * time.Millisecond,
		SendTimeout:     2 * time.Second,
		Keepalive:       60 * time.Second,
		Mounts:          []string{"/"},
		Analog: AnalogConfig{
			Device:           "/sys/bus/iio/devices/iio:device0",
			FullScale:        4095,
			ReferenceVoltage: 1.8,
		},
		Viewer: ViewerConfig{
			URL:   "ws://localhost:5555/",
			Codec: "json",
		},
	}
}
