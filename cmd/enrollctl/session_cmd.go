package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/service"
)

type sessionListOutput struct {
	Sessions   []models.TrainingSession `json:"sessions"`
	Pagination *models.Pagination       `json:"pagination"`
}

func newSessionCmd(deps *cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage training sessions",
	}
	cmd.AddCommand(newSessionCreateCmd(deps), newSessionListCmd(deps))
	return cmd
}

func newSessionCreateCmd(deps *cliDeps) *cobra.Command {
	var req service.CreateSessionRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a training session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			session, err := a.Sessions.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), session)
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Session title (required)")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Start date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "End date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.Location, "location", "", "Venue")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newSessionListCmd(deps *cliDeps) *cobra.Command {
	var filter models.SessionFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List training sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			sessions, pagination, err := a.Sessions.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if sessions == nil {
				sessions = []models.TrainingSession{}
			}
			return writeJSON(cmd.OutOrStdout(), sessionListOutput{Sessions: sessions, Pagination: pagination})
		},
	}

	cmd.Flags().IntVar(&filter.Year, "year", 0, "Only sessions starting in this year")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&filter.PageSize, "page-size", 20, "Page size")
	return cmd
}
