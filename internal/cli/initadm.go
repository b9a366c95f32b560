package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/config"
	"github.com/idover/idover/internal/db"
	"github.com/idover/idover/internal/store"
)

var initAdmCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ledger database",
	Long: `Initialize creates the SQLite database, runs migrations, and seeds a
default team so single-tenant deployments work out of the box.`,
	RunE: runInitAdm,
}

var initAdmTeamName string

func init() {
	rootAdmCmd.AddCommand(initAdmCmd)

	initAdmCmd.Flags().StringVar(&initAdmTeamName, "team-name", "default", "Name for the seeded default team")
}

func runInitAdm(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return exitError(1, fmt.Errorf("failed to load config: %w", err))
	}

	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	dbExists := false
	if _, err := os.Stat(cfg.DBPath); err == nil {
		dbExists = true
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to open database: %w", err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return exitError(1, fmt.Errorf("failed to run migrations: %w", err))
	}

	if !dbExists {
		team, err := store.New(database).Teams.Create(initAdmTeamName)
		if err != nil {
			return exitError(1, fmt.Errorf("failed to seed default team: %w", err))
		}

		fmt.Printf("✓ Initialized new database at %s\n", cfg.DBPath)
		fmt.Printf("✓ Seeded team %d (%s)\n", team.ID, team.Name)
	} else {
		fmt.Printf("✓ Database already initialized at %s\n", cfg.DBPath)
		fmt.Printf("✓ Migrations applied\n")
	}

	return nil
}
