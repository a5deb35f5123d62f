package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sensortop/sensortop/internal/backend"
	"github.com/sensortop/sensortop/internal/backend/hwmon"
	nvmlbackend "github.com/sensortop/sensortop/internal/backend/nvml"
	"github.com/sensortop/sensortop/internal/config"
	"github.com/sensortop/sensortop/internal/dashboard"
	"github.com/sensortop/sensortop/internal/errors"
	"github.com/sensortop/sensortop/internal/logger"
	"github.com/sensortop/sensortop/internal/monitor"
)

// dashCommand starts the sensor dashboard.
func dashCommand(configPath, intervalOverride string, historyOverride int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, intervalOverride, historyOverride); err != nil {
		return err
	}

	log := logger.NewEnvLogger("sensortop")

	backends := openBackends(cfg, log)
	if len(backends) == 0 {
		return errors.New(errors.ErrBackend,
			"No sensor backends available",
			"Check that /sys/class/hwmon exists or an NVIDIA driver is installed")
	}
	defer closeBackends(backends, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Startup enumeration gets a hard deadline so a wedged driver call
	// cannot hang the launch; the backend just starts out unavailable and
	// gets re-probed on rescan.
	enumCtx, enumCancel := context.WithTimeout(ctx, cfg.SampleTimeout*time.Duration(len(backends)+1))
	registry, statuses := monitor.BuildRegistry(enumCtx, backends, log)
	enumCancel()
	store := monitor.NewStore(cfg.History)
	for name, status := range statuses {
		store.SetStatus(name, status)
	}

	poller := monitor.NewPoller(backends, registry, store, cfg.Interval, cfg.SampleTimeout, log)
	go poller.Run(ctx)

	model := dashboard.NewModel(poller, cfg.Interval)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()

	// Stop sampling before tearing down native libraries. Run returns with
	// the terminal already restored, even on panic inside the program.
	cancel()
	poller.Wait()

	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Dashboard terminated unexpectedly",
			"Check that you are running in a real terminal")
	}
	return nil
}

// applyOverrides layers command-line flags over the loaded config and
// re-validates the result.
func applyOverrides(cfg *config.Config, intervalOverride string, historyOverride int) error {
	if intervalOverride != "" {
		parsed, err := time.ParseDuration(intervalOverride)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid interval: %s", intervalOverride),
				"Use a valid duration like 2s, 5s, or 1m")
		}
		cfg.Interval = parsed
	}
	if historyOverride > 0 {
		cfg.History = historyOverride
	}
	return config.Validate(cfg)
}

// openBackends constructs every enabled backend. A backend whose library
// fails to initialize is skipped with a warning; the dashboard still runs
// with whatever sources remain.
func openBackends(cfg *config.Config, log logger.Logger) []backend.Backend {
	var backends []backend.Backend

	if cfg.Backends.Hwmon.Enabled {
		backends = append(backends, hwmon.New(cfg.Backends.Hwmon.Root, log))
	}

	if cfg.Backends.NVML.Enabled {
		nv, err := nvmlbackend.New(log)
		if err != nil {
			log.Warn("NVML unavailable: %v", err)
		} else {
			backends = append(backends, nv)
		}
	}

	return backends
}

// closeBackends tears down every backend, logging failures.
func closeBackends(backends []backend.Backend, log logger.Logger) {
	for _, b := range backends {
		if err := b.Close(); err != nil {
			log.Warn("failed to close backend %s: %v", b.Name(), err)
		}
	}
}
