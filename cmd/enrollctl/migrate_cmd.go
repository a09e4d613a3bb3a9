package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/training-import/pkg/database"
)

type migrateOutput struct {
	Command string `json:"command"`
	Driver  string `json:"driver"`
	Steps   int    `json:"steps,omitempty"`
}

func newMigrateCmd(deps *cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := deps.config()
			if err != nil {
				return err
			}
			if err := database.MigrateUp(database.URL(cfg.Database)); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), migrateOutput{Command: "migrate up", Driver: cfg.Database.Driver})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := deps.config()
			if err != nil {
				return err
			}
			if err := database.MigrateDown(database.URL(cfg.Database), steps); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), migrateOutput{Command: "migrate down", Driver: cfg.Database.Driver, Steps: steps})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
