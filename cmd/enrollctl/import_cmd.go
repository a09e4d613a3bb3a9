package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/training-import/internal/service"
)

type importOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newImportCmd(deps *cliDeps) *cobra.Command {
	var (
		req           service.ImportRequest
		exceptionsOut string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a roster file into a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var exportFormat service.ExportFormat
			if exceptionsOut != "" {
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

			req.SourceName = filepath.Base(req.Path)
			start := time.Now()
			receipt, err := a.Imports.Import(cmd.Context(), req)
			if err != nil {
				return err
			}

			if exceptionsOut != "" {
				payload, err := a.Exports.RenderExceptions(receipt, exportFormat)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.ErrOrStderr(), exceptionsOut, payload); err != nil {
					return err
				}
			}

			return writeJSON(cmd.OutOrStdout(), importOutput{
				Command:    "import",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     receipt,
			})
		},
	}

	cmd.Flags().StringVar(&req.SessionID, "session", "", "Target session ID (required)")
	cmd.Flags().StringVar(&req.Path, "file", "", "Roster file, xlsx or csv (required)")
	cmd.Flags().StringVar(&req.PhoneMode, "phone-mode", "", "strict or lenient, defaults to configuration")
	cmd.Flags().StringVar(&exceptionsOut, "exceptions-out", "", "Write the exception list to this file")
	cmd.Flags().StringVar(&format, "format", "csv", "Exception list format, csv or pdf")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
