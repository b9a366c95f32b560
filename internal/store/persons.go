package store

import (
	"database/sql"
	"fmt"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/events"
)

// PersonStore handles the live-identity registry. Rows are created by the
// ingestion boundary when an identity is first observed and removed when a
// merge absorbs the identity or a deletion erases it.
type PersonStore struct {
	store *Store
}

// Create registers a new live person. An empty uuid generates one. This is
// the ingestion-path boundary: the ledger assumes it ran before any merge
// references the person.
func (ps *PersonStore) Create(teamID int64, personUUID string) (*domain.Person, error) {
	if personUUID == "" {
		personUUID = domain.NewPersonID()
	}

	err := ps.store.withTx(opCreatePerson, func(tx *sql.Tx, ew *events.Writer) error {
		if _, err := tx.Exec(`
			INSERT INTO persons (team_id, uuid) VALUES (?, ?)
		`, teamID, personUUID); err != nil {
			return err
		}
		return ew.LogPersonCreated(tx, teamID, personUUID)
	})
	if err != nil {
		return nil, err
	}

	return ps.Get(teamID, personUUID)
}

// Get retrieves a person by team and UUID.
func (ps *PersonStore) Get(teamID int64, personUUID string) (*domain.Person, error) {
	person := &domain.Person{}
	var createdAt string
	err := ps.store.db.QueryRow(`
		SELECT team_id, uuid, created_at, version FROM persons WHERE team_id = ? AND uuid = ?
	`, teamID, personUUID).Scan(&person.TeamID, &person.UUID, &createdAt, &person.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("person not found: %s", personUUID)
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	if person.CreatedAt, err = domain.ParseEventTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return person, nil
}

// Exists reports whether a live person row exists.
func (ps *PersonStore) Exists(teamID int64, personUUID string) (bool, error) {
	var n int
	err := ps.store.db.QueryRow(`
		SELECT COUNT(*) FROM persons WHERE team_id = ? AND uuid = ?
	`, teamID, personUUID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check person: %w", err)
	}
	return n > 0, nil
}

// Delete removes a person row without cascading override rows. If the person
// is still referenced as an override target the foreign key rejects the
// delete and the error classifies as a ReferentialViolation: erasure must go
// through Store.DeletePerson instead.
func (ps *PersonStore) Delete(teamID int64, personUUID string) error {
	return ps.store.withTx(opRawDelete, func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`
			DELETE FROM persons WHERE team_id = ? AND uuid = ?
		`, teamID, personUUID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("person not found: %s", personUUID)
		}
		return ew.LogPersonDeleted(tx, teamID, personUUID, 0)
	})
}

// ListByTeam returns all live persons for a team ordered by UUID.
func (ps *PersonStore) ListByTeam(teamID int64) ([]domain.Person, error) {
	rows, err := ps.store.db.Query(`
		SELECT team_id, uuid, created_at, version FROM persons WHERE team_id = ? ORDER BY uuid
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		var person domain.Person
		var createdAt string
		if err := rows.Scan(&person.TeamID, &person.UUID, &createdAt, &person.Version); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		if person.CreatedAt, err = domain.ParseEventTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		persons = append(persons, person)
	}
	return persons, rows.Err()
}

// personExistsTx checks for a live person row inside a transaction.
func personExistsTx(tx *sql.Tx, teamID int64, personUUID string) (bool, error) {
	var n int
	err := tx.QueryRow(`
		SELECT COUNT(*) FROM persons WHERE team_id = ? AND uuid = ?
	`, teamID, personUUID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check person: %w", err)
	}
	return n > 0, nil
}

// deletePersonRowTx removes a person row inside a transaction, reporting
// whether a row was actually deleted.
func deletePersonRowTx(tx *sql.Tx, teamID int64, personUUID string) (bool, error) {
	res, err := tx.Exec(`
		DELETE FROM persons WHERE team_id = ? AND uuid = ?
	`, teamID, personUUID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
