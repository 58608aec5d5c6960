package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the otpauthd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otpauthd",
		Short: "Account registration, login and OTP verification service",
		Long: `otpauthd serves email/password accounts over JSON HTTP: registration,
cookie sessions, email verification and password reset by one-time code.

Configuration is read from the environment (PORT, JWT_SECRET, STORE, ...).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
