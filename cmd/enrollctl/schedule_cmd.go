package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/service"
)

type scheduleOutput struct {
	Count   int                    `json:"count"`
	Entries []models.ScheduleEntry `json:"entries"`
}

func newScheduleCmd(deps *cliDeps) *cobra.Command {
	var req service.ExtractRequest

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Extract course entries from a docx schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			entries, err := a.Schedules.Extract(cmd.Context(), req)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []models.ScheduleEntry{}
			}
			return writeJSON(cmd.OutOrStdout(), scheduleOutput{Count: len(entries), Entries: entries})
		},
	}

	cmd.Flags().StringVar(&req.Path, "file", "", "Schedule document, docx (required)")
	cmd.Flags().IntVar(&req.DefaultYear, "year", 0, "Year for dates written without one")
	cmd.Flags().StringVar(&req.Location, "location", "", "Location attached to every entry")
	cmd.Flags().StringVar(&req.SessionID, "session", "", "Session the entries belong to")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
