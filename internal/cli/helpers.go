package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idover/idover/internal/config"
	"github.com/idover/idover/internal/db"
	"github.com/idover/idover/internal/domain"
)

// codedError carries the process exit code alongside the error. Code 1 is a
// runtime failure, code 2 a usage or validation error.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// exitError wraps err so the process exits with the given code.
func exitError(code int, err error) error {
	return &codedError{code: code, err: err}
}

// ExitCode returns the process exit code for a command error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// openDatabase loads configuration, applies the --db flag override, opens the
// database, and refuses to run against a schema with pending migrations.
func openDatabase(cmd *cobra.Command) (*db.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RequiresMigrationError(); err != nil {
		database.Close()
		return nil, nil, err
	}

	return database, cfg, nil
}

// resolveTeamID returns the team from the --team flag or config default.
func resolveTeamID(cmd *cobra.Command, cfg *config.Config) (int64, error) {
	teamID, err := cmd.Flags().GetInt64("team")
	if err != nil {
		return 0, err
	}
	if teamID == 0 {
		teamID = cfg.DefaultTeam
	}
	if err := domain.ValidateTeamID(teamID); err != nil {
		return 0, err
	}
	return teamID, nil
}

// classifyExit renders a classified ledger error for operators, noting
// whether a retry is worthwhile.
func classifyExit(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case domain.IsConflict(err):
		return fmt.Errorf("%w (lost a race with a concurrent transaction; safe to retry)", err)
	case domain.IsConstraintViolation(err):
		return fmt.Errorf("%w (rejected; retrying will not help)", err)
	case domain.IsReferentialViolation(err):
		return fmt.Errorf("%w (use 'idover person delete' to cascade)", err)
	case domain.IsUnavailable(err):
		return fmt.Errorf("%w (storage failure; retry with backoff)", err)
	default:
		return err
	}
}
