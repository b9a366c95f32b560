package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/store"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve PERSON_ID",
	Short: "Resolve a person to its canonical identity",
	Long: `Resolve prints the canonical identity a person currently maps to: the
override target if the person was absorbed, otherwise the person itself.
The answer may change between calls as merges commit.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	st := store.New(database)
	canonical, err := st.Overrides.Resolve(teamID, personID)
	if err != nil {
		return exitError(1, classifyExit(err))
	}

	if cfg.Output == "json" {
		out, err := json.Marshal(map[string]interface{}{
			"team_id":      teamID,
			"person_id":    personID,
			"canonical_id": canonical,
			"absorbed":     canonical != personID,
		})
		if err != nil {
			return exitError(1, err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(canonical)
	return nil
}
