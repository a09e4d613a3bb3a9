package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/training-import/internal/service"
)

func newTokenCmd(deps *cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}

	var subject string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := deps.config()
			if err != nil {
				return err
			}
			tokens := service.NewTokenService(service.TokenConfig{
				Secret: cfg.JWT.Secret,
				Issuer: cfg.JWT.Issuer,
				Expiry: cfg.JWT.Expiration,
			})
			token, err := tokens.Issue(subject)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), token)
		},
	}
	issue.Flags().StringVar(&subject, "subject", "", "Operator name (required)")
	_ = issue.MarkFlagRequired("subject")
	cmd.AddCommand(issue)

	return cmd
}
