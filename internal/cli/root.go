// Package cli wires the sensortop commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	configFlag   string
	intervalFlag string
	historyFlag  int
)

// rootCmd is the base command. Running sensortop with no subcommand starts
// the dashboard.
var rootCmd = &cobra.Command{
	Use:   "sensortop",
	Short: "Live hardware sensor dashboard",
	Long: `sensortop is a terminal dashboard for hardware sensors.

It polls motherboard, CPU, and drive sensors from the Linux hwmon sysfs
tree and NVIDIA GPUs via NVML, keeps a rolling history per sensor, and
renders live readings with min/max statistics and trend sparklines.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  Space       Pause / resume sampling
  r           Refresh now
  R           Rescan for new sensors
  s           Cycle sort order (default/name/value)
  up/k        Select previous sensor
  down/j      Select next sensor
  Enter       Expand selected sensor details
  Esc         Collapse / go back
  ?           Show help

Examples:
  sensortop
  sensortop --interval 5s
  sensortop --config ./sensors.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashCommand(configFlag, intervalFlag, historyFlag)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sensortop.

Examples:
  # Bash
  sensortop completion bash > /etc/bash_completion.d/sensortop

  # Zsh
  sensortop completion zsh > "${fpath[1]}/_sensortop"

  # Fish
  sensortop completion fish > ~/.config/fish/completions/sensortop.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		default:
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&intervalFlag, "interval", "", "refresh interval (e.g., 2s, 5s, 1m)")
	rootCmd.Flags().IntVar(&historyFlag, "history", 0, "samples retained per sensor")

	rootCmd.AddCommand(completionCmd)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
