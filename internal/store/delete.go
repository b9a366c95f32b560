package store

import (
	"database/sql"

	"github.com/idover/idover/internal/events"
)

// DeleteResult describes a committed deletion.
type DeleteResult struct {
	PersonDeleted          bool  // a live person row was removed
	TargetOverridesDeleted int64 // rows that pointed at the person, removed
	OwnOverrideDeleted     bool  // the person's own absorption record, removed
}

// DeletePerson erases a person and every trace of it from the ledger in one
// transaction: rows that targeted the person as their canonical identity are
// removed (those old identities lose their mapping entirely — re-merging them
// is an external decision), the person's own override row is removed if it
// had been absorbed, and finally the person row itself.
//
// The deletion guard does not retry: losing a race against a concurrent merge
// surfaces as a ConflictError for the caller to handle. Deleting an unknown
// person is a no-op reported through the result counts.
func (s *Store) DeletePerson(teamID int64, personID string) (*DeleteResult, error) {
	var result *DeleteResult
	err := s.withTx(opDeletePerson, func(tx *sql.Tx, ew *events.Writer) error {
		targetsDeleted, err := deleteOverridesTargetingTx(tx, teamID, personID)
		if err != nil {
			return err
		}
		ownDeleted, err := deleteOverrideRowTx(tx, teamID, personID)
		if err != nil {
			return err
		}
		personDeleted, err := deletePersonRowTx(tx, teamID, personID)
		if err != nil {
			return err
		}

		if personDeleted || ownDeleted || targetsDeleted > 0 {
			if err := ew.LogPersonDeleted(tx, teamID, personID, targetsDeleted); err != nil {
				return err
			}
		}

		result = &DeleteResult{
			PersonDeleted:          personDeleted,
			TargetOverridesDeleted: targetsDeleted,
			OwnOverrideDeleted:     ownDeleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
