package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/config"
	"github.com/sensortop/sensortop/internal/logger"
)

// listCmd prints a one-shot reading of every sensor and exits.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one reading from every sensor and exit",
	Long: `Enumerate all sensors, take a single reading, and print a table.

Useful for scripting or for checking what sensortop can see without
starting the dashboard.

Examples:
  sensortop list
  sensortop list --config ./sensors.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCommand(configFlag)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// listCommand enumerates and samples every backend once, printing results
// as they come. Failing backends are reported inline, not fatal.
func listCommand(configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	log := logger.NewEnvLogger("sensortop")
	backends := openBackends(cfg, log)
	defer closeBackends(backends, log)

	width := 100
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.SampleTimeout)
	defer cancel()

	for _, b := range backends {
		metas, err := b.Enumerate(ctx)
		if err != nil {
			fmt.Printf("%s: unavailable (%v)\n", b.Name(), err)
			continue
		}

		ids := make([]backend.SensorID, len(metas))
		for i, m := range metas {
			ids[i] = m.ID
		}
		values, err := b.Sample(ctx, ids)
		if err != nil {
			fmt.Printf("%s: sampling failed (%v)\n", b.Name(), err)
			continue
		}

		fmt.Printf("%s (%d sensors)\n", b.Name(), len(metas))
		for _, m := range metas {
			fmt.Println(clampLine(formatListRow(m, values), width))
		}
	}

	return nil
}

// formatListRow renders one sensor's table row.
func formatListRow(m backend.SensorMeta, values map[backend.SensorID]float64) string {
	value := "--"
	if v, ok := values[m.ID]; ok {
		value = fmt.Sprintf("%.1f %s", v, m.Unit)
	}
	return fmt.Sprintf("  %-32s %-13s %12s    %s", truncateName(m.Name, 32), m.Kind, value, m.ID)
}

// truncateName cuts a display name to the column width. Names come from
// sensor labels and the friendly-name table, so they are not plain ASCII;
// cut on runes, never bytes.
func truncateName(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// clampLine hard-cuts a rendered row to the terminal width without
// splitting a multibyte rune.
func clampLine(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
