package domain

import (
	"time"
)

// Team is the tenant boundary. No ledger invariant crosses a team; identical
// person UUIDs in different teams are unrelated identities.
type Team struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	APIToken  string    `json:"api_token,omitempty" db:"api_token"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Person is a live identity that can own events. Persons are created by the
// ingestion path when an identity is first observed and destroyed when a merge
// absorbs them into another person.
type Person struct {
	TeamID    int64     `json:"team_id" db:"team_id"`
	UUID      string    `json:"uuid" db:"uuid"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Version   int64     `json:"version" db:"version"`
}

// PersonOverride is a ledger entry recording that old_person_id has been
// absorbed into override_person_id. An absorbed identity has exactly one
// current canonical target, and the target of a committed row is always a
// terminal: it never has an override row of its own.
type PersonOverride struct {
	TeamID           int64     `json:"team_id" db:"team_id"`
	OldPersonID      string    `json:"old_person_id" db:"old_person_id"`
	OverridePersonID string    `json:"override_person_id" db:"override_person_id"`
	OldestEvent      time.Time `json:"oldest_event" db:"oldest_event"`
	Version          int64     `json:"version" db:"version"`
}

// Event represents an entry in the audit event log
type Event struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	TeamID       int64     `json:"team_id" db:"team_id"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceUUID *string   `json:"resource_uuid,omitempty" db:"resource_uuid"`
	EventType    string    `json:"event_type" db:"event_type"`
	Version      *int64    `json:"version,omitempty" db:"version"`
	Payload      *string   `json:"payload,omitempty" db:"payload"`
}

// EventTimeLayout is the storage format for oldest_event timestamps. It is
// fixed-width millisecond UTC so that lexicographic comparison in SQL (MIN)
// agrees with chronological order.
const EventTimeLayout = "2006-01-02T15:04:05.000Z"

// FormatEventTime renders a timestamp in the ledger's storage format.
func FormatEventTime(t time.Time) string {
	return t.UTC().Format(EventTimeLayout)
}

// ParseEventTime parses a timestamp in the ledger's storage format.
func ParseEventTime(s string) (time.Time, error) {
	return time.Parse(EventTimeLayout, s)
}
