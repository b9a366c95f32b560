package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/db"
	"github.com/idover/idover/internal/store"
)

var checkAdmCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan a team's ledger for invariant violations",
	Long: `Check scans the override ledger for states no committed transaction should
ever produce: chains deeper than one hop, override targets with no live
person, absorbed identities that still have a person row, and self
overrides. It also reports audit-log sequence drift left behind by manual
surgery on the database file. Any finding indicates corruption and exits
non-zero.`,
	RunE: runCheckAdm,
}

func init() {
	checkAdmCmd.Flags().Bool("fix-sequences", false, "repair sqlite_sequence drift instead of just reporting it")
	rootAdmCmd.AddCommand(checkAdmCmd)
}

func runCheckAdm(cmd *cobra.Command, args []string) error {
	database, cfg, err := openDatabase(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	teamID, err := resolveTeamID(cmd, cfg)
	if err != nil {
		return exitError(2, err)
	}

	problems, err := store.New(database).CheckLedger(teamID)
	if err != nil {
		return exitError(1, err)
	}

	fixSequences, _ := cmd.Flags().GetBool("fix-sequences")
	var drifts []db.SequenceDrift
	if fixSequences {
		drifts, err = database.FixSequenceDrifts()
	} else {
		drifts, err = database.SequenceDrifts()
	}
	if err != nil {
		return exitError(1, err)
	}

	findings := len(problems)
	for _, d := range drifts {
		if fixSequences {
			fmt.Printf("✓ Repaired sequence for %s (was %d, now %d)\n", d.Table, d.SeqValue, d.MaxID)
		} else {
			fmt.Printf("✗ [sequence_drift] %s: sqlite_sequence %d behind max id %d (rerun with --fix-sequences)\n",
				d.Table, d.SeqValue, d.MaxID)
			findings++
		}
	}
	for _, p := range problems {
		fmt.Printf("✗ [%s] %s -> %s: %s\n", p.Kind, p.OldPersonID, p.OverridePersonID, p.Detail)
	}

	if findings > 0 {
		return exitError(1, fmt.Errorf("found %d ledger problem(s)", findings))
	}
	fmt.Printf("✓ Ledger for team %d is consistent\n", teamID)
	return nil
}
