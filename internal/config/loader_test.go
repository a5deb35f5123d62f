package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensortop/sensortop/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 150, cfg.History)
	assert.Equal(t, time.Second, cfg.SampleTimeout)
	assert.True(t, cfg.Backends.Hwmon.Enabled)
	assert.Equal(t, "/sys/class/hwmon", cfg.Backends.Hwmon.Root)
	assert.True(t, cfg.Backends.NVML.Enabled)
	assert.NoError(t, Validate(cfg))
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
interval: 5s
history: 300
sample_timeout: 2s
backends:
  hwmon:
    enabled: true
    root: /tmp/fake-hwmon
  nvml:
    enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, 300, cfg.History)
	assert.Equal(t, 2*time.Second, cfg.SampleTimeout)
	assert.Equal(t, "/tmp/fake-hwmon", cfg.Backends.Hwmon.Root)
	assert.False(t, cfg.Backends.NVML.Enabled)
}

func TestLoadPartialConfigUsesDefaults(t *testing.T) {
	path := writeConfig(t, "interval: 10s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 150, cfg.History, "unset fields fall back to defaults")
	assert.True(t, cfg.Backends.Hwmon.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"interval too short", func(c *Config) { c.Interval = 100 * time.Millisecond }, true},
		{"interval at minimum", func(c *Config) { c.Interval = 500 * time.Millisecond }, false},
		{"history too small", func(c *Config) { c.History = 1 }, true},
		{"zero sample timeout", func(c *Config) { c.SampleTimeout = 0 }, true},
		{"all backends disabled", func(c *Config) {
			c.Backends.Hwmon.Enabled = false
			c.Backends.NVML.Enabled = false
		}, true},
		{"one backend is enough", func(c *Config) { c.Backends.NVML.Enabled = false }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadInvalidValuesRejected(t *testing.T) {
	path := writeConfig(t, "interval: 50ms\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadOrDefaultWithoutAnyConfig(t *testing.T) {
	// Run from a directory with no local config
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
