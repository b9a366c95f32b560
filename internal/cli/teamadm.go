package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/store"
)

var teamAdmCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams (tenants)",
}

var teamCreateAdmCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamCreateAdm,
}

var teamListAdmCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams",
	RunE:  runTeamListAdm,
}

func init() {
	rootAdmCmd.AddCommand(teamAdmCmd)
	teamAdmCmd.AddCommand(teamCreateAdmCmd)
	teamAdmCmd.AddCommand(teamListAdmCmd)
}

func runTeamCreateAdm(cmd *cobra.Command, args []string) error {
	database, _, err := openDatabase(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	team, err := store.New(database).Teams.Create(args[0])
	if err != nil {
		return exitError(1, classifyExit(err))
	}

	fmt.Printf("✓ Created team %d (%s)\n", team.ID, team.Name)
	return nil
}

func runTeamListAdm(cmd *cobra.Command, args []string) error {
	database, _, err := openDatabase(cmd)
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	teams, err := store.New(database).Teams.List()
	if err != nil {
		return exitError(1, err)
	}

	for _, team := range teams {
		fmt.Printf("%d\t%s\n", team.ID, team.Name)
	}
	return nil
}
