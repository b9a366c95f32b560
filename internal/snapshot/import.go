package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/idover/idover/internal/store"
)

// Parse decodes snapshot JSON (canonical or pretty).
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if s.Meta.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d (want %d)", s.Meta.SchemaVersion, SchemaVersion)
	}
	return &s, nil
}

// Restore writes a snapshot's persons and overrides into the team's ledger in
// one transaction. Persons already present are left untouched; overrides for
// an already-absorbed person keep the earlier oldest_event. The usual schema
// constraints still apply, so a snapshot that violates ledger invariants is
// rejected as a whole.
func Restore(st *store.Store, s *Snapshot) error {
	tx, err := st.DB().BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin restore: %w", err)
	}
	defer tx.Rollback()

	for uuid, p := range s.Persons {
		if _, err := tx.Exec(`
			INSERT INTO persons (team_id, uuid, created_at, version)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (team_id, uuid) DO NOTHING
		`, s.Meta.TeamID, uuid, p.CreatedAt, p.Version); err != nil {
			return fmt.Errorf("failed to restore person %s: %w", uuid, err)
		}
	}

	for oldID, o := range s.Overrides {
		if _, err := tx.Exec(`
			INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (team_id, old_person_id) DO UPDATE SET
				override_person_id = excluded.override_person_id,
				oldest_event = MIN(oldest_event, excluded.oldest_event),
				version = version + 1
		`, s.Meta.TeamID, oldID, o.OverridePersonID, o.OldestEvent, o.Version); err != nil {
			return fmt.Errorf("failed to restore override %s: %w", oldID, err)
		}
	}

	return tx.Commit()
}
