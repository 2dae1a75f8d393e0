package main

import (
	"time"

	"github.com/spf13/cobra"

	"jobcal/internal/config"
	appLog "jobcal/internal/log"
	"jobcal/internal/schedule"
	"jobcal/internal/store"
)

// app carries state shared by every subcommand once the root has loaded
// the config.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	loc *time.Location
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "jobcal",
		Short:         "Weekly calendar of job applications and interviews",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "jobcal.yaml", "path to config file (created with defaults if missing)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newServeCmd(a),
		newWeekCmd(a),
		newExportCmd(a),
		newImportICSCmd(a),
		newAddCmd(a),
		newCaptureCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	loc, err := cfg.Location()
	if err != nil {
		appLog.Warn("unknown timezone; using local", "timezone", cfg.Timezone)
	}
	a.cfg, a.loc = cfg, loc

	appLog.Debug("effective config",
		"config_path", a.configPath,
		"listen", cfg.Listen,
		"timezone", loc.String(),
		"refresh", cfg.RefreshCron,
		"store", cfg.Store.Driver,
		"capture", cfg.Capture.Enabled,
	)
	return nil
}

func (a *app) openStore() (store.Store, error) {
	return store.Open(a.cfg.Store)
}

func (a *app) projector() schedule.Projector {
	return schedule.Projector{Palette: a.cfg.ColorPalette(), Location: a.loc}
}
