package db

import (
	"database/sql"
	"fmt"
)

// SequenceDrift captures drift between sqlite_sequence and the max existing
// row id of an AUTOINCREMENT table. Drift appears after manual surgery on the
// database file; left alone it would hand out ids that collide with restored
// rows.
type SequenceDrift struct {
	Table    string
	MaxID    int64
	SeqValue int64
}

// autoincrementTables lists the tables whose sqlite_sequence entry must track
// the max existing id. Only the audit trail uses AUTOINCREMENT.
var autoincrementTables = []string{"event_log"}

// SequenceDrifts returns tables whose sqlite_sequence value is below the max
// existing id.
func (db *DB) SequenceDrifts() ([]SequenceDrift, error) {
	var drifts []SequenceDrift
	for _, table := range autoincrementTables {
		var maxID int64
		query := fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table)
		if err := db.QueryRow(query).Scan(&maxID); err != nil {
			return nil, fmt.Errorf("failed to compute max id for %s: %w", table, err)
		}

		seqValue, err := currentSequence(db, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read sqlite_sequence for %s: %w", table, err)
		}

		if seqValue < maxID {
			drifts = append(drifts, SequenceDrift{Table: table, MaxID: maxID, SeqValue: seqValue})
		}
	}
	return drifts, nil
}

// FixSequenceDrifts updates sqlite_sequence to match the max existing ids and
// returns the sequences that were updated.
func (db *DB) FixSequenceDrifts() ([]SequenceDrift, error) {
	drifts, err := db.SequenceDrifts()
	if err != nil {
		return nil, err
	}
	for _, drift := range drifts {
		if err := setSequence(db, drift.Table, drift.MaxID); err != nil {
			return nil, fmt.Errorf("failed to update sqlite_sequence for %s: %w", drift.Table, err)
		}
	}
	return drifts, nil
}

func currentSequence(db *DB, table string) (int64, error) {
	var seq sql.NullInt64
	err := db.QueryRow("SELECT seq FROM sqlite_sequence WHERE name = ?", table).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

func setSequence(db *DB, table string, value int64) error {
	res, err := db.Exec("UPDATE sqlite_sequence SET seq = ? WHERE name = ?", value, table)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	_, err = db.Exec("INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)", table, value)
	return err
}
