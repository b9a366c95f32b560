package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/store"
)

var mergeCmd = &cobra.Command{
	Use:   "merge OLD_PERSON_ID TARGET_PERSON_ID",
	Short: "Absorb one person identity into another",
	Long: `Merge records that OLD_PERSON_ID has been recognized as the same real-world
entity as TARGET_PERSON_ID. The target is first resolved to its current
canonical identity; the old person row is deleted and every identity that
previously resolved to it is repointed, all in one transaction.

A conflict (exit with a retryable error) means a concurrent merge or deletion
won the race; re-run the merge against the current state. A constraint
rejection means the request itself was invalid and must not be retried.`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

var mergeOldestEvent string

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeOldestEvent, "oldest-event", "", "Earliest known event timestamp for the absorbed person (RFC3339, default now)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	oldPersonID, targetPersonID := args[0], args[1]

	if err := domain.ValidatePersonID(oldPersonID); err != nil {
		return exitError(2, err)
	}
	if err := domain.ValidatePersonID(targetPersonID); err != nil {
		return exitError(2, err)
	}

	oldestEvent := time.Now().UTC()
	if mergeOldestEvent != "" {
		var err error
		if oldestEvent, err = domain.ValidateTimestamp(mergeOldestEvent); err != nil {
			return exitError(2, err)
		}
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

	result, err := store.New(database).Merge(teamID, oldPersonID, targetPersonID, oldestEvent)
	if err != nil {
		return exitError(1, classifyExit(err))
	}

	logrus.WithFields(logrus.Fields{
		"team":      teamID,
		"old":       result.OldPersonID,
		"target":    result.OverridePersonID,
		"repointed": result.Repointed,
	}).Debug("merge committed")

	fmt.Printf("✓ Merged %s into %s\n", result.OldPersonID, result.OverridePersonID)
	if result.OverridePersonID != targetPersonID {
		fmt.Printf("  (target %s had already been absorbed; resolved to %s)\n", targetPersonID, result.OverridePersonID)
	}
	if result.Repointed > 0 {
		fmt.Printf("  Repointed %d existing override(s)\n", result.Repointed)
	}
	return nil
}
