package store

import (
	"database/sql"
	"time"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/events"
)

// MergeResult describes a committed merge.
type MergeResult struct {
	OldPersonID      string // the absorbed identity
	OverridePersonID string // the canonical target after chain resolution
	Repointed        int64  // rows that previously targeted the absorbed identity
	Version          int64  // version of the new override row
}

// Merge absorbs oldPersonID into overridePersonID, resolving the target to
// its current terminal first. Within one transaction it deletes the old
// person row, records the override, and repoints every row that targeted the
// old person, keeping the earliest oldest_event throughout.
//
// Committed chains are at most one hop deep: because every merge resolves to
// the terminal before writing, no stored old_person_id ever points at an
// identity that itself has an override row. A single-hop lookup is therefore
// a full resolution.
//
// Writers hold the database lock from BEGIN, so resolution and the writes
// see one consistent state. A merge whose old person was already absorbed by
// an earlier committer aborts with a ConflictError for the caller to retry,
// and the (team_id, old_person_id) primary key remains the final backstop
// for races the application checks miss.
func (s *Store) Merge(teamID int64, oldPersonID, overridePersonID string, oldestEvent time.Time) (*MergeResult, error) {
	if oldPersonID == overridePersonID {
		return nil, &domain.ConstraintViolationError{
			Op:     opMerge,
			Detail: "cannot merge a person into itself",
		}
	}

	var result *MergeResult
	err := s.withTx(opMerge, func(tx *sql.Tx, ew *events.Writer) error {
		// Resolve the target to its current terminal (single hop).
		terminal := overridePersonID
		existing, err := getOverrideTx(tx, teamID, overridePersonID)
		if err != nil {
			return err
		}
		if existing != nil {
			terminal = existing.OverridePersonID
		}

		// A merge that resolves back onto the old person is a disguised
		// self-override and would close a cycle.
		if terminal == oldPersonID {
			return &domain.ConstraintViolationError{
				Op:     opMerge,
				Detail: "merge target resolves back to the person being absorbed",
			}
		}

		// The old person must be live at transaction start. A missing row
		// with an override ledger entry means a concurrent merge already
		// absorbed it; a missing row with no entry is a caller bug.
		oldExists, err := personExistsTx(tx, teamID, oldPersonID)
		if err != nil {
			return err
		}
		if !oldExists {
			absorbed, err := getOverrideTx(tx, teamID, oldPersonID)
			if err != nil {
				return err
			}
			if absorbed != nil {
				return &domain.ConflictError{
					Op:     opMerge,
					Detail: "person was already absorbed by a concurrent merge",
				}
			}
			return &domain.ConstraintViolationError{
				Op:     opMerge,
				Detail: "person to absorb does not exist",
			}
		}

		// Atomic unit, ordered for the immediately enforced foreign key:
		// repoint the rows that targeted the old person so nothing
		// references it, then remove its person row, then record the
		// override. The foreign key verifies the terminal is a live person
		// at both the repoint and the insert; no application pre-check
		// duplicates it.
		repointed, err := repointTx(tx, teamID, oldPersonID, terminal, oldestEvent)
		if err != nil {
			return err
		}
		if _, err := deletePersonRowTx(tx, teamID, oldPersonID); err != nil {
			return err
		}
		if err := insertOverrideTx(tx, teamID, oldPersonID, terminal, oldestEvent); err != nil {
			return err
		}

		if err := ew.LogPersonMerged(tx, teamID, oldPersonID, terminal, repointed, oldestEvent); err != nil {
			return err
		}

		result = &MergeResult{
			OldPersonID:      oldPersonID,
			OverridePersonID: terminal,
			Repointed:        repointed,
			Version:          1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
