package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/sensortop/sensortop/internal/errors"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'sensortop init' to create one, or specify a path with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sensortop.yaml in the current directory
// 3. ~/.config/sensortop/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads the config found by Find, falling back to the built-in
// defaults when no config file exists anywhere.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks semantic constraints the schema cannot express.
func Validate(cfg *Config) error {
	if cfg.Interval < 500*time.Millisecond {
		return errors.New(errors.ErrConfig,
			"Polling interval too short",
			"Minimum interval is 500ms; use something like 1s or 2s")
	}
	if cfg.History < 2 {
		return errors.New(errors.ErrConfig,
			"History too small",
			"Keep at least 2 samples so trends can be drawn")
	}
	if cfg.SampleTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"Sample timeout must be positive",
			"Use something like 500ms or 1s")
	}
	if !cfg.Backends.Hwmon.Enabled && !cfg.Backends.NVML.Enabled {
		return errors.New(errors.ErrConfig,
			"All backends are disabled",
			"Enable at least one of backends.hwmon or backends.nvml")
	}
	return nil
}

// setDefaults registers the built-in defaults so a partial config file
// only needs to override what it changes.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("interval", def.Interval)
	v.SetDefault("history", def.History)
	v.SetDefault("sample_timeout", def.SampleTimeout)
	v.SetDefault("backends.hwmon.enabled", def.Backends.Hwmon.Enabled)
	v.SetDefault("backends.hwmon.root", def.Backends.Hwmon.Root)
	v.SetDefault("backends.nvml.enabled", def.Backends.NVML.Enabled)
}

// parseConfig unmarshals and validates the viper state.
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config file structure",
			"Compare your config against 'sensortop init' output")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
