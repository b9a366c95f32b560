package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/events"
)

// OverrideStore reads the override ledger. All writes flow through the merge
// resolver and the deletion guard; the transaction-scoped helpers below are
// the primitives they share and never commit on their own.
type OverrideStore struct {
	store *Store
}

// Get returns the override row for a person, or nil when the person has not
// been absorbed. This is the read path used by API and export consumers; the
// answer may change between calls.
func (os *OverrideStore) Get(teamID int64, personID string) (*domain.PersonOverride, error) {
	row := os.store.db.QueryRow(`
		SELECT team_id, old_person_id, override_person_id, oldest_event, version
		FROM person_overrides
		WHERE team_id = ? AND old_person_id = ?
	`, teamID, personID)
	return scanOverride(row)
}

// Resolve maps a person to its current canonical identity: the override
// target if the person was absorbed, otherwise the person itself.
func (os *OverrideStore) Resolve(teamID int64, personID string) (string, error) {
	override, err := os.Get(teamID, personID)
	if err != nil {
		return "", err
	}
	if override == nil {
		return personID, nil
	}
	return override.OverridePersonID, nil
}

// ListByTeam returns all override rows for a team ordered by old_person_id.
func (os *OverrideStore) ListByTeam(teamID int64) ([]domain.PersonOverride, error) {
	rows, err := os.store.db.Query(`
		SELECT team_id, old_person_id, override_person_id, oldest_event, version
		FROM person_overrides
		WHERE team_id = ?
		ORDER BY old_person_id
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	var overrides []domain.PersonOverride
	for rows.Next() {
		var o domain.PersonOverride
		var oldestEvent string
		if err := rows.Scan(&o.TeamID, &o.OldPersonID, &o.OverridePersonID, &oldestEvent, &o.Version); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		if o.OldestEvent, err = domain.ParseEventTime(oldestEvent); err != nil {
			return nil, fmt.Errorf("failed to parse oldest_event: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// Upsert writes an override row outside the merge path, used by the admin
// restore flow. An existing row for the same old person keeps the earlier
// oldest_event and gets its version bumped.
func (os *OverrideStore) Upsert(teamID int64, oldPersonID, overridePersonID string, oldestEvent time.Time) error {
	return os.store.withTx(opRestore, func(tx *sql.Tx, ew *events.Writer) error {
		return upsertOverrideTx(tx, teamID, oldPersonID, overridePersonID, oldestEvent)
	})
}

// getOverrideTx reads an override row inside a transaction.
func getOverrideTx(tx *sql.Tx, teamID int64, personID string) (*domain.PersonOverride, error) {
	row := tx.QueryRow(`
		SELECT team_id, old_person_id, override_person_id, oldest_event, version
		FROM person_overrides
		WHERE team_id = ? AND old_person_id = ?
	`, teamID, personID)
	return scanOverride(row)
}

// insertOverrideTx records a fresh absorption at version 1. The primary key
// on (team_id, old_person_id) rejects a second row for the same old person,
// and the foreign key rejects a target that is not a live person.
func insertOverrideTx(tx *sql.Tx, teamID int64, oldPersonID, overridePersonID string, oldestEvent time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version)
		VALUES (?, ?, ?, ?, 1)
	`, teamID, oldPersonID, overridePersonID, domain.FormatEventTime(oldestEvent))
	return err
}

// repointTx redirects every row targeting from_person to to_person, keeping
// the earliest oldest_event and bumping each row's version. Returns the
// number of repointed rows.
func repointTx(tx *sql.Tx, teamID int64, fromPersonID, toPersonID string, oldestEvent time.Time) (int64, error) {
	res, err := tx.Exec(`
		UPDATE person_overrides
		SET override_person_id = ?,
		    oldest_event = MIN(oldest_event, ?),
		    version = version + 1
		WHERE team_id = ? AND override_person_id = ?
	`, toPersonID, domain.FormatEventTime(oldestEvent), teamID, fromPersonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// upsertOverrideTx inserts or updates an override row, keeping the earliest
// oldest_event on update.
func upsertOverrideTx(tx *sql.Tx, teamID int64, oldPersonID, overridePersonID string, oldestEvent time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (team_id, old_person_id) DO UPDATE SET
			override_person_id = excluded.override_person_id,
			oldest_event = MIN(oldest_event, excluded.oldest_event),
			version = version + 1
	`, teamID, oldPersonID, overridePersonID, domain.FormatEventTime(oldestEvent))
	return err
}

// deleteOverridesTargetingTx removes all rows whose override target is the
// given person, returning the count.
func deleteOverridesTargetingTx(tx *sql.Tx, teamID int64, personID string) (int64, error) {
	res, err := tx.Exec(`
		DELETE FROM person_overrides WHERE team_id = ? AND override_person_id = ?
	`, teamID, personID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// deleteOverrideRowTx removes the override row owned by the given old person,
// reporting whether one existed.
func deleteOverrideRowTx(tx *sql.Tx, teamID int64, personID string) (bool, error) {
	res, err := tx.Exec(`
		DELETE FROM person_overrides WHERE team_id = ? AND old_person_id = ?
	`, teamID, personID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// scanOverride scans a single override row, mapping no-rows to nil.
func scanOverride(row *sql.Row) (*domain.PersonOverride, error) {
	var o domain.PersonOverride
	var oldestEvent string
	err := row.Scan(&o.TeamID, &o.OldPersonID, &o.OverridePersonID, &oldestEvent, &o.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override: %w", err)
	}
	if o.OldestEvent, err = domain.ParseEventTime(oldestEvent); err != nil {
		return nil, fmt.Errorf("failed to parse oldest_event: %w", err)
	}
	return &o, nil
}
