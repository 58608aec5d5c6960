package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/otpAuth/internal/config"
	"github.com/MrEthical07/otpAuth/store/pgstore"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the PostgreSQL database at DATABASE_DSN.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_DSN environment variable is required")
	}

	cmd.Println("Running migrations...")
	if err := pgstore.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
