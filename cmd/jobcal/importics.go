package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobcal/internal/ics"
	appLog "jobcal/internal/log"
)

func newImportICSCmd(a *app) *cobra.Command {
	var appID string

	cmd := &cobra.Command{
		Use:   "import-ics FILE",
		Short: "Attach the events of an .ics invite to an application's timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries, err := ics.ParseInvite(body, a.loc)
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			for _, e := range entries {
				if err := st.AddTimelineEntry(cmd.Context(), appID, e); err != nil {
					return fmt.Errorf("import %q: %w", e.Title, err)
				}
				appLog.Debug("timeline entry added", "application", appID, "title", e.Title, "date", e.Date)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d event(s) into %s\n", len(entries), appID)
			return nil
		},
	}
	cmd.Flags().StringVar(&appID, "application", "", "application id to attach events to")
	_ = cmd.MarkFlagRequired("application")
	return cmd
}
