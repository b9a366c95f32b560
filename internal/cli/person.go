package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/store"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage person identities",
}

var personCreateCmd = &cobra.Command{
	Use:   "create [PERSON_ID]",
	Short: "Register a new person identity",
	Long: `Create registers a live person identity, as the event-ingestion path does
when a brand-new identity is first observed. Omitting PERSON_ID generates one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPersonCreate,
}

var personDeleteCmd = &cobra.Command{
	Use:   "delete PERSON_ID",
	Short: "Erase a person and cascade its override rows",
	Long: `Delete erases a person identity (for example on a data-erasure request).
Override rows pointing at the person are removed along with the person's own
absorption record and the person row, in one transaction. A conflict with a
concurrent merge is surfaced, not retried.`,
	Args: cobra.ExactArgs(1),
	RunE: runPersonDelete,
}

func init() {
	rootCmd.AddCommand(personCmd)
	personCmd.AddCommand(personCreateCmd)
	personCmd.AddCommand(personDeleteCmd)
}

func runPersonCreate(cmd *cobra.Command, args []string) error {
	personID := ""
	if len(args) == 1 {
		personID = args[0]
		if err := domain.ValidatePersonID(personID); err != nil {
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

	person, err := store.New(database).Persons.Create(teamID, personID)
	if err != nil {
		return exitError(1, classifyExit(err))
	}

	fmt.Printf("✓ Created person %s in team %d\n", person.UUID, person.TeamID)
	return nil
}

func runPersonDelete(cmd *cobra.Command, args []string) error {
	personID := args[0]
	if err := domain.ValidatePersonID(personID); err != nil {
		return exitError(2, err)
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

	result, err := store.New(database).DeletePerson(teamID, personID)
	if err != nil {
		return exitError(1, classifyExit(err))
	}

	logrus.WithFields(logrus.Fields{
		"team":               teamID,
		"person":             personID,
		"overrides_deleted":  result.TargetOverridesDeleted,
		"own_row_deleted":    result.OwnOverrideDeleted,
		"person_row_deleted": result.PersonDeleted,
	}).Debug("delete committed")

	if !result.PersonDeleted && !result.OwnOverrideDeleted && result.TargetOverridesDeleted == 0 {
		fmt.Printf("Nothing to delete for %s\n", personID)
		return nil
	}

	fmt.Printf("✓ Deleted person %s\n", personID)
	if result.TargetOverridesDeleted > 0 {
		fmt.Printf("  Removed %d override(s) that pointed at it\n", result.TargetOverridesDeleted)
	}
	if result.OwnOverrideDeleted {
		fmt.Printf("  Removed its own absorption record\n")
	}
	return nil
}
