package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:6000"
	cfg.Simulate = true
	cfg.Analog.ReferenceVoltage = 3.3
	require.NoError(t, Write(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# gatewatch configuration")
	assert.Contains(t, string(data), "provider_timeout: 800ms")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `# my gateway
listen: ":5555" # public port
analog:
  reference_voltage: 1.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, SetValue(path, "listen", ":6000"))
	require.NoError(t, SetValue(path, "analog.reference_voltage", "3.3"))
	require.NoError(t, SetValue(path, "viewer.codec", "cbor"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# my gateway")
	assert.Contains(t, string(data), "# public port")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Listen)
	assert.Equal(t, 3.3, cfg.Analog.ReferenceVoltage)
	assert.Equal(t, "cbor", cfg.Viewer.Codec)
}

func TestSetValue_Errors(t *testing.T) {
	dir := t.TempDir()

	err := SetValue(filepath.Join(dir, "missing.yaml"), "listen", ":1")
	assert.ErrorContains(t, err, "failed to read")

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("listen: \":5555\"\nmounts:\n  - /\n"), 0644))

	assert.ErrorContains(t, SetValue(path, "listen.port", "1"), "not a section")
	assert.ErrorContains(t, SetValue(path, "mounts", "/data"), "not a single value")
}
