package config

import "time"

// ConfigFileName is the per-directory config file name.
const ConfigFileName = ".sensortop.yaml"

// GlobalConfigDir is the directory for global config, under $HOME.
const GlobalConfigDir = ".config/sensortop"

// GlobalConfigFile is the global config file name.
const GlobalConfigFile = "config.yaml"

// Config represents the complete sensortop configuration.
type Config struct {
	// Interval is the polling cadence for all backends.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// History is the number of samples retained per sensor.
	History int `yaml:"history" mapstructure:"history"`

	// SampleTimeout is the hard per-backend deadline for one sampling call.
	SampleTimeout time.Duration `yaml:"sample_timeout" mapstructure:"sample_timeout"`

	// Backends enables and configures the individual sensor sources.
	Backends BackendsConfig `yaml:"backends" mapstructure:"backends"`
}

// BackendsConfig holds per-backend settings.
type BackendsConfig struct {
	Hwmon HwmonConfig `yaml:"hwmon" mapstructure:"hwmon"`
	NVML  NVMLConfig  `yaml:"nvml" mapstructure:"nvml"`
}

// HwmonConfig configures the sysfs hwmon backend.
type HwmonConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Root is the hwmon sysfs directory. Overridable for testing.
	Root string `yaml:"root" mapstructure:"root"`
}

// NVMLConfig configures the NVIDIA NVML backend.
type NVMLConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Interval:      2 * time.Second,
		History:       150,
		SampleTimeout: 1 * time.Second,
		Backends: BackendsConfig{
			Hwmon: HwmonConfig{Enabled: true, Root: "/sys/class/hwmon"},
			NVML:  NVMLConfig{Enabled: true},
		},
	}
}
