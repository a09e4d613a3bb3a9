package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/training-import/internal/service"
)

func newStatsCmd(deps *cliDeps) *cobra.Command {
	var (
		year   int
		limit  int
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize enrollments of sessions starting in a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var exportFormat service.ExportFormat
			if format != "" && format != "json" {
				parsed, err := service.ParseExportFormat(format)
				if err != nil {
					return err
				}
				exportFormat = parsed
			}

			a, err := deps.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			summary, _, err := a.Stats.YearSummary(cmd.Context(), year, limit)
			if err != nil {
				return err
			}
			if exportFormat == "" {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			payload, err := a.Exports.RenderYearSummary(summary, exportFormat)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, payload)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Session start year (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of top learners, defaults to configuration")
	cmd.Flags().StringVar(&format, "format", "json", "json, csv or pdf")
	cmd.Flags().StringVar(&out, "out", "", "Write csv or pdf output to this file instead of stdout")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
