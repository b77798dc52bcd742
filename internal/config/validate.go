package config

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/rileyhilliard/gatewatch/internal/broadcast"
	"github.com/rileyhilliard/gatewatch/internal/errors"
)

// ValidCodecs are the accepted values for viewer.codec.
var ValidCodecs = map[string]bool{
	"json": true,
	"cbor": true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but gatewatch only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade gatewatch or lower the version field.")
	}

	if err := ValidateListen(cfg.Listen); err != nil {
		return err
	}

	if err := validateTimeouts(cfg); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the timeout settings in gatewatch.yaml.")
	}

	if len(cfg.Mounts) == 0 {
		return errors.New(errors.ErrConfig,
			"No mounts configured for disk usage",
			"Add at least one mount point, e.g. mounts: [\"/\"]")
	}
	for _, m := range cfg.Mounts {
		if !filepath.IsAbs(m) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Mount '%s' is not an absolute path", m),
				"Use absolute mount points like / or /data.")
		}
	}

	if err := validateAnalog(cfg.Analog, cfg.Simulate); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'analog' section in gatewatch.yaml.")
	}

	if err := validateViewer(cfg.Viewer); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'viewer' section in gatewatch.yaml.")
	}

	return nil
}

// ValidateListen checks that addr is a host:port pair with a usable port.
func ValidateListen(addr string) error {
	if addr == "" {
		return errors.New(errors.ErrConfig,
			"Listen address is empty",
			"Set listen to something like \":5555\" or \"0.0.0.0:5555\".")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Listen address '%s' isn't host:port", addr),
			"Use a form like \":5555\" or \"127.0.0.1:5555\".")
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Listen port '%s' is out of range", port),
			"Pick a port between 0 and 65535.")
	}
	return nil
}

func validateTimeouts(cfg *Config) error {
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("provider_timeout must be positive, got %s", cfg.ProviderTimeout)
	}
	if cfg.ProviderTimeout >= broadcast.Period {
		return fmt.Errorf("provider_timeout %s must be shorter than the %s sampling period", cfg.ProviderTimeout, broadcast.Period)
	}
	if cfg.SendTimeout <= 0 {
		return fmt.Errorf("send_timeout must be positive, got %s", cfg.SendTimeout)
	}
	if cfg.Keepalive <= 0 {
		return fmt.Errorf("keepalive must be positive, got %s", cfg.Keepalive)
	}
	return nil
}

func validateAnalog(a AnalogConfig, simulate bool) error {
	if math.IsNaN(a.ReferenceVoltage) || math.IsInf(a.ReferenceVoltage, 0) || a.ReferenceVoltage <= 0 {
		return fmt.Errorf("analog.reference_voltage must be a positive number, got %v", a.ReferenceVoltage)
	}
	if a.FullScale <= 0 {
		return fmt.Errorf("analog.full_scale must be positive, got %d", a.FullScale)
	}
	if a.Device == "" && !simulate {
		return fmt.Errorf("analog.device is empty and simulate is off")
	}
	return nil
}

func validateViewer(v ViewerConfig) error {
	if !ValidCodecs[v.Codec] {
		return fmt.Errorf("viewer.codec '%s' is not supported (use json or cbor)", v.Codec)
	}
	u, err := url.Parse(v.URL)
	if err != nil {
		return fmt.Errorf("viewer.url '%s' is not a valid URL: %w", v.URL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("viewer.url '%s' must use ws:// or wss://", v.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("viewer.url '%s' has no host", v.URL)
	}
	return nil
}
