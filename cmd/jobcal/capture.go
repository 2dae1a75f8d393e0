package main

import (
	"github.com/spf13/cobra"

	"jobcal/internal/capture"
)

func newCaptureCmd(a *app) *cobra.Command {
	var url, out string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save a PNG preview of the running server's week page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := capture.FromConfig(a.cfg)
			if url != "" {
				opts.URL = url
			}
			if out != "" {
				opts.Output = out
			}
			return capture.CaptureWeekPNG(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "page to capture (default http://<listen>/calendar)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "PNG output path")
	return cmd
}
