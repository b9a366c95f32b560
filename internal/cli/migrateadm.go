package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/config"
	"github.com/idover/idover/internal/db"
)

var migrateAdmCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runMigrateAdm,
}

var statusAdmCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending schema migrations",
	RunE:  runStatusAdm,
}

func init() {
	rootAdmCmd.AddCommand(migrateAdmCmd)
	rootAdmCmd.AddCommand(statusAdmCmd)
}

// openForMigration opens the database without the pending-migration guard.
func openForMigration(cmd *cobra.Command) (*db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}
	return db.Open(cfg.DBPath)
}

func runMigrateAdm(cmd *cobra.Command, args []string) error {
	database, err := openForMigration(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	applied, err := database.MigrateWithInfo()
	if err != nil {
		return exitError(1, fmt.Errorf("migration failed: %w", err))
	}

	if len(applied) == 0 {
		fmt.Println("✓ Database is up to date")
		return nil
	}
	for _, m := range applied {
		fmt.Printf("✓ Applied %s\n", m)
	}
	return nil
}

func runStatusAdm(cmd *cobra.Command, args []string) error {
	database, err := openForMigration(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	applied, pending, err := database.MigrationStatus()
	if err != nil {
		return exitError(1, err)
	}

	fmt.Printf("Database: %s\n", database.Path())
	for _, m := range applied {
		fmt.Printf("  applied: %s\n", m)
	}
	for _, m := range pending {
		fmt.Printf("  pending: %s\n", m)
	}
	if len(pending) == 0 {
		fmt.Println("✓ No pending migrations")
	}
	return nil
}
