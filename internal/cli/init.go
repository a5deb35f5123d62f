package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sensortop/sensortop/internal/config"
	"github.com/sensortop/sensortop/internal/errors"
)

var initForce bool

// initCmd creates a new .sensortop.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .sensortop.yaml configuration",
	Long: `Initialize a new sensortop configuration file.

Creates a .sensortop.yaml file in the current directory with sensible
defaults, guided by interactive prompts.

Examples:
  sensortop init
  sensortop init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

// initCommand collects settings interactively and writes the config file.
func initCommand(force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	interval := cfg.Interval.String()
	history := strconv.Itoa(cfg.History)
	hwmonEnabled := cfg.Backends.Hwmon.Enabled
	nvmlEnabled := cfg.Backends.NVML.Enabled

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Polling interval").
				Description("How often to read all sensors").
				Placeholder("2s").
				Value(&interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return fmt.Errorf("use a duration like 2s or 500ms")
					}
					if d < 500*time.Millisecond {
						return fmt.Errorf("minimum interval is 500ms")
					}
					return nil
				}),
			huh.NewInput().
				Title("History size").
				Description("Samples retained per sensor (150 at 2s covers ~5 minutes)").
				Placeholder("150").
				Value(&history).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 2 {
						return fmt.Errorf("use a whole number of at least 2")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable hwmon backend (motherboard, CPU, drives)?").
				Value(&hwmonEnabled),
			huh.NewConfirm().
				Title("Enable NVML backend (NVIDIA GPUs)?").
				Value(&nvmlEnabled),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility")
	}

	cfg.Interval, _ = time.ParseDuration(interval)
	cfg.History, _ = strconv.Atoi(history)
	cfg.Backends.Hwmon.Enabled = hwmonEnabled
	cfg.Backends.NVML.Enabled = nvmlEnabled

	if err := config.Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize config",
			"This is a bug; please report it")
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+configPath,
			"Check directory permissions")
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}
