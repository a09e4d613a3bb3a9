package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/app"
	"github.com/noah-isme/training-import/pkg/config"
	"github.com/noah-isme/training-import/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "enrollctl",
		Short:         "Training roster import and reporting tools",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")

	deps := &cliDeps{logLevel: &logLevel}
	cmd.AddCommand(
		newMigrateCmd(deps),
		newSessionCmd(deps),
		newImportCmd(deps),
		newScheduleCmd(deps),
		newStatsCmd(deps),
		newTokenCmd(deps),
	)
	return cmd
}

// cliDeps defers configuration and wiring until a command actually runs.
type cliDeps struct {
	logLevel *string
}

func (d *cliDeps) config() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logr, err := logger.NewCLI(*d.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logr, nil
}

func (d *cliDeps) open(cmd *cobra.Command) (*app.App, error) {
	cfg, logr, err := d.config()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logr)
}
