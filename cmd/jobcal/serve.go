package main

import (
	"context"

	"github.com/spf13/cobra"

	"jobcal/internal/capture"
	appLog "jobcal/internal/log"
	"jobcal/internal/refresh"
	"jobcal/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web calendar and refresh records on schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appLog.Info("jobcal starting", "version", version, "listen", a.cfg.Listen)

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runner := refresh.New(st, a.cfg.RefreshCron, a.loc)
			if err := runner.Start(ctx); err != nil {
				return err
			}
			defer runner.Stop()

			// Registered after the initial load so the first capture runs
			// once the server is listening.
			if a.cfg.Capture.Enabled {
				opts := capture.FromConfig(a.cfg)
				runner.OnRefresh(func(ctx context.Context, _ refresh.Snapshot) {
					if err := capture.CaptureWeekPNG(ctx, opts); err != nil {
						appLog.Error("preview capture failed", err, "url", opts.URL)
					}
				})
				appLog.Info("preview capture enabled", "output", opts.Output)
			}

			err = web.StartServer(ctx, a.cfg, runner)
			appLog.Info("jobcal exiting")
			return err
		},
	}
	return cmd
}
