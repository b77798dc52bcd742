//go:build !linux

package facts

// hardwareSerial has no source outside Linux; callers fall back to the
// gopsutil host ID.
func hardwareSerial() string { return "" }
