package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jobcal/internal/printer"
	"jobcal/internal/schedule"
)

func newWeekCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the week containing --date (default today)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().In(a.loc)
			anchor := now
			if date != "" {
				d, err := time.ParseInLocation(time.DateOnly, date, a.loc)
				if err != nil {
					return err
				}
				anchor = d
			}

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
			w := cmd.OutOrStdout()
			if w == os.Stdout {
				w = color.Output
			}
			return printer.PrintWeek(w, schedule.BuildWeek(events, anchor, now), now)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week to show, YYYY-MM-DD")
	return cmd
}
