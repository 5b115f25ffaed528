package cmd

import (
	"fmt"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newTokenCmd issues a dashboard session token, for operators and local testing.
func newTokenCmd() *cobra.Command {
	var (
		account string
		email   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accountID, err := uuid.Parse(account)
			if err != nil {
				return fmt.Errorf("--account must be a UUID: %w", err)
			}
			if _, err := config.Init(configFile); err != nil {
				return err
			}

			token, appErr := utils.GenerateToken(accountID, email, constants.ScopeTokenAccess)
			if appErr != nil {
				return appErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "clinic account id")
	cmd.Flags().StringVar(&email, "email", "", "email recorded in the token")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
