package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the session store migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Session.Driver == "memory" {
		return fmt.Errorf("session driver %q has no schema to migrate", cfg.Session.Driver)
	}

	db, err := openSessionDB(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateRollback {
		if err := db.Rollback(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the latest session store migration")
		return nil
	}

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session store is up to date")
	return nil
}
