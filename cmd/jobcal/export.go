package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobcal/internal/ics"
	appLog "jobcal/internal/log"
)

func newExportCmd(a *app) *cobra.Command {
	var out, name string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all projected events as an iCalendar feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.Applications(cmd.Context())
			if err != nil {
				return err
			}
			events := a.projector().Project(records)
			body := ics.Export(events, name, time.Now())

			if out == "" || out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
				return err
			}
			appLog.Info("exported calendar", "path", out, "events", len(events))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&name, "name", "Job applications", "calendar name")
	return cmd
}
