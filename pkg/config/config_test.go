package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "si5326.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	n, err := cfg.BusNumber()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, cfg.Reset.Enabled())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
transport: periph
bus: I2C1
address: 0x69
strict_probe: true
log_level: debug
reset:
  chip: gpiochip0
  line: 17
  pulse: 5ms
serve:
  socket: /tmp/si5326.sock
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportPeriph, cfg.Transport)
	assert.Equal(t, "I2C1", cfg.Bus)
	assert.Equal(t, uint16(0x69), cfg.Address)
	assert.True(t, cfg.StrictProbe)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Reset.Enabled())
	assert.Equal(t, 17, cfg.Reset.Line)
	assert.Equal(t, 5*time.Millisecond, cfg.Reset.Pulse)
	assert.Equal(t, 30*time.Millisecond, cfg.Reset.Settle)
	assert.Equal(t, "/tmp/si5326.sock", cfg.Serve.Socket)
	assert.Equal(t, 115200, cfg.Serve.Baud)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
transport: spi
address: 0x90
log_level: loud
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
	assert.Contains(t, err.Error(), "7-bit")
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadSMBusNeedsNumber(t *testing.T) {
	path := writeConfig(t, "transport: smbus\nbus: I2C1\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "transport: [smbus\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
