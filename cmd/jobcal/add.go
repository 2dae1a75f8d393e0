package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobcal/internal/model"
	"jobcal/internal/schedule"
)

func newAddCmd(a *app) *cobra.Command {
	var rec model.ApplicationRecord

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new job application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rec.AppliedDate == "" {
				rec.AppliedDate = time.Now().In(a.loc).Format(time.DateOnly)
			}
			if _, _, err := schedule.ParseDate(rec.AppliedDate, a.loc); err != nil {
				return fmt.Errorf("applied date: %w", err)
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.AddApplication(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&rec.Company, "company", "", "company name")
	cmd.Flags().StringVar(&rec.Position, "position", "", "position applied for")
	cmd.Flags().StringVar(&rec.AppliedDate, "applied", "", "submission date (default today)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
