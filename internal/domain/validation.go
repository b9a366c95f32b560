package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidatePersonID validates a person identifier. Person IDs are opaque to the
// ledger but the surrounding system always supplies lowercase UUIDs, so the
// CLI rejects anything else before it reaches the store.
func ValidatePersonID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid person id %q: must be a UUID", id)
	}
	if parsed.String() != id {
		return fmt.Errorf("invalid person id %q: must be lowercase canonical UUID form", id)
	}
	return nil
}

// NewPersonID generates a fresh person UUID.
func NewPersonID() string {
	return uuid.NewString()
}

// ValidateTeamID validates a tenant identifier.
func ValidateTeamID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid team id %d: must be positive", id)
	}
	return nil
}

// ValidateTimestamp validates and parses an ISO8601 timestamp
func ValidateTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: expected ISO8601/RFC3339")
	}
	return t, nil
}

// ValidateResourceType validates an event resource type
func ValidateResourceType(resourceType string) error {
	switch resourceType {
	case "person", "team", "system":
		return nil
	default:
		return fmt.Errorf("invalid resource type: must be one of: person, team, system")
	}
}
