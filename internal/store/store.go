// Package store is the persistence layer for the person override ledger. It
// owns all mutations of identity and override state: external callers submit
// merge and delete intents, and every intent runs inside exactly one
// transaction whose outcome is committed, or aborted with a classified error.
package store

import (
	"database/sql"
	"errors"

	"github.com/idover/idover/internal/db"
	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/events"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Operation names used for error classification.
const (
	opMerge        = "merge"
	opDeletePerson = "delete person"
	opRawDelete    = "delete person (no cascade)"
	opCreatePerson = "create person"
	opCreateTeam   = "create team"
	opRestore      = "restore override"
)

// Store is the root store that provides access to domain-specific stores.
type Store struct {
	db *db.DB

	Teams     *TeamStore
	Persons   *PersonStore
	Overrides *OverrideStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Teams = &TeamStore{store: s}
	s.Persons = &PersonStore{store: s}
	s.Overrides = &OverrideStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// withTx executes fn within a single transaction. If fn returns nil the
// transaction is committed, otherwise rolled back. Rollback is also the
// outcome when the caller abandons the operation mid-flight. Every error on
// the way out — from fn, from BEGIN, from COMMIT — is classified into the
// ledger's error taxonomy; the store never retries on its own.
func (s *Store) withTx(op string, fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return classify(op, err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return classify(op, err)
	}

	return classify(op, tx.Commit())
}

// classify maps a store error onto the ledger error taxonomy. Database
// constraint failures are the authoritative signal, not a fallback: lock
// timeouts and unique-key hits mean a race was lost (retryable), CHECK
// failures mean the caller asked for something invalid, and foreign-key
// failures depend on intent — during a merge the referenced target is gone,
// during a raw delete the person is still referenced.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsConflict(err) || domain.IsConstraintViolation(err) ||
		domain.IsReferentialViolation(err) || domain.IsUnavailable(err) {
		return err
	}

	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &domain.ConflictError{Op: op, Detail: "timed out waiting for the database lock"}
		case sqlite3.ErrConstraint:
			switch serr.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
				return &domain.ConflictError{Op: op, Detail: serr.Error()}
			case sqlite3.ErrConstraintCheck:
				return &domain.ConstraintViolationError{Op: op, Detail: serr.Error()}
			case sqlite3.ErrConstraintForeignKey:
				if op == opRawDelete {
					return &domain.ReferentialViolationError{Op: op, Detail: "person is still referenced as an override target"}
				}
				return &domain.ConstraintViolationError{Op: op, Detail: "referenced person does not exist"}
			default:
				return &domain.ConstraintViolationError{Op: op, Detail: serr.Error()}
			}
		}
	}

	return &domain.UnavailableError{Op: op, Err: err}
}
