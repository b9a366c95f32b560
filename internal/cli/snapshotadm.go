package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/snapshot"
	"github.com/idover/idover/internal/store"
)

var exportAdmCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export a team's ledger as a canonical snapshot",
	Long: `Export writes the team's persons and override rows as canonical JSON with a
sha256 revision. Without FILE the snapshot goes to stdout. Downstream
consumers can compare revisions to detect ledger drift cheaply.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExportAdm,
}

var restoreAdmCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Restore a ledger snapshot into the database",
	Long: `Restore writes a snapshot's persons and overrides into the team's ledger in
one transaction. Existing persons are kept; overrides keep the earliest
oldest_event. Schema constraints still apply, so an inconsistent snapshot is
rejected as a whole.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestoreAdm,
}

var verifyAdmCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Compare the live ledger against a snapshot",
	Long: `Verify exports the team's current ledger and diffs it against the snapshot
in FILE, ignoring generation time and revision. A non-empty diff exits
non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyAdm,
}

func init() {
	rootAdmCmd.AddCommand(exportAdmCmd)
	rootAdmCmd.AddCommand(restoreAdmCmd)
	rootAdmCmd.AddCommand(verifyAdmCmd)
}

func runExportAdm(cmd *cobra.Command, args []string) error {
	database, cfg, err := openDatabase(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	teamID, err := resolveTeamID(cmd, cfg)
	if err != nil {
		return exitError(2, err)
	}

	snap, err := snapshot.Export(store.New(database), teamID)
	if err != nil {
		return exitError(1, err)
	}

	data, err := snapshot.Finalize(snap, time.Now())
	if err != nil {
		return exitError(1, err)
	}

	if len(args) == 1 {
		if err := os.WriteFile(args[0], append(data, '\n'), 0644); err != nil {
			return exitError(1, fmt.Errorf("failed to write snapshot: %w", err))
		}
		fmt.Printf("✓ Exported team %d to %s (%s)\n", teamID, args[0], snap.Meta.SnapshotRev)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

func runRestoreAdm(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return exitError(1, fmt.Errorf("failed to read snapshot: %w", err))
	}

	snap, err := snapshot.Parse(data)
	if err != nil {
		return exitError(2, err)
	}

	database, _, err := openDatabase(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	if err := snapshot.Restore(store.New(database), snap); err != nil {
		return exitError(1, classifyExit(err))
	}

	fmt.Printf("✓ Restored %d person(s) and %d override(s) into team %d\n",
		len(snap.Persons), len(snap.Overrides), snap.Meta.TeamID)
	return nil
}

func runVerifyAdm(cmd *cobra.Command, args []string) error {
	want, err := os.ReadFile(args[0])
	if err != nil {
		return exitError(1, fmt.Errorf("failed to read snapshot: %w", err))
	}

	database, cfg, err := openDatabase(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	teamID, err := resolveTeamID(cmd, cfg)
	if err != nil {
		return exitError(2, err)
	}

	snap, err := snapshot.Export(store.New(database), teamID)
	if err != nil {
		return exitError(1, err)
	}
	got, err := snapshot.Finalize(snap, time.Now())
	if err != nil {
		return exitError(1, err)
	}

	diff, err := snapshot.Diff(want, got)
	if err != nil {
		return exitError(1, err)
	}
	if diff != "" {
		fmt.Print(diff)
		return exitError(1, fmt.Errorf("ledger differs from snapshot %s", args[0]))
	}

	fmt.Printf("✓ Ledger matches snapshot %s\n", args[0])
	return nil
}
