// Package cli implements the idover and idoveradm command trees. idover
// carries the operational surface (merge, person, resolve) consumed by the
// identity-resolution and erasure workflows; idoveradm carries the database
// lifecycle and ledger maintenance surface.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "idover",
	Short: "Person identity override ledger",
	Long: `idover records that one person identity has been absorbed into another and
resolves identities to their canonical form. Merges and deletions are
transactional: callers observe either a fully committed consistent state or
no state change at all. Conflicts are surfaced, never retried internally.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides IDOVER_DB_PATH)")
	rootCmd.PersistentFlags().Int64("team", 0, "Team (tenant) ID (overrides IDOVER_TEAM)")
}

// setupLogging configures logrus from the configured log level.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return nil
}
