package cli

import (
	"github.com/spf13/cobra"
)

var rootAdmCmd = &cobra.Command{
	Use:   "idoveradm",
	Short: "Administrative CLI for the idover ledger database lifecycle",
	Long: `idoveradm is the administrative companion to idover. It handles database
lifecycle (init, migrate, status), ledger snapshots (export, restore,
verify), and consistency checks. These operations should not be exposed to
the merge and erasure workflows.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to database file (overrides IDOVER_DB_PATH)")
	rootAdmCmd.PersistentFlags().Int64("team", 0, "Team (tenant) ID (overrides IDOVER_TEAM)")
}
