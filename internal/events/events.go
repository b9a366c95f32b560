// Package events writes the append-only audit trail. Ledger mutations log
// their event inside the same transaction, so the trail never records an
// uncommitted merge or deletion.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/idover/idover/internal/domain"
)

// Writer handles writing events to the event log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogEvent writes an event to the event log
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (team_id, resource_type, resource_uuid, event_type, version, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	executor := w.getExecutor(tx)
	_, err := executor.Exec(query, event.TeamID, event.ResourceType, event.ResourceUUID, event.EventType, event.Version, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogPersonCreated logs a person registration from the ingestion path.
func (w *Writer) LogPersonCreated(tx *sql.Tx, teamID int64, personUUID string) error {
	return w.LogEvent(tx, &domain.Event{
		TeamID:       teamID,
		ResourceType: "person",
		ResourceUUID: &personUUID,
		EventType:    "person.created",
	})
}

// LogPersonMerged logs a committed merge: old absorbed into target, with the
// number of repointed rows and the merge's oldest event time.
func (w *Writer) LogPersonMerged(tx *sql.Tx, teamID int64, oldPersonID, overridePersonID string, repointed int64, oldestEvent time.Time) error {
	payload, err := json.Marshal(map[string]interface{}{
		"old_person_id":      oldPersonID,
		"override_person_id": overridePersonID,
		"repointed":          repointed,
		"oldest_event":       domain.FormatEventTime(oldestEvent),
	})
	if err != nil {
		return err
	}

	payloadStr := string(payload)
	version := int64(1)
	return w.LogEvent(tx, &domain.Event{
		TeamID:       teamID,
		ResourceType: "person",
		ResourceUUID: &oldPersonID,
		EventType:    "person.merged",
		Version:      &version,
		Payload:      &payloadStr,
	})
}

// getExecutor returns the appropriate executor (tx or db)
func (w *Writer) getExecutor(tx *sql.Tx) interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}

// LogPersonDeleted logs a committed deletion, including how many override
// rows pointing at the person were cascaded away.
func (w *Writer) LogPersonDeleted(tx *sql.Tx, teamID int64, personUUID string, overridesDeleted int64) error {
	payload, err := json.Marshal(map[string]interface{}{
		"overrides_deleted": overridesDeleted,
	})
	if err != nil {
		return err
	}

	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		TeamID:       teamID,
		ResourceType: "person",
		ResourceUUID: &personUUID,
		EventType:    "person.deleted",
		Payload:      &payloadStr,
	})
}
