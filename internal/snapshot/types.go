// Package snapshot exports and restores a consistent view of one team's
// ledger. Exports are canonical JSON so that two snapshots of the same state
// are byte-identical, and each carries a sha256 revision for cheap
// drift detection by downstream consumers.
package snapshot

// SchemaVersion identifies the snapshot layout.
const SchemaVersion = 1

// Snapshot is a full view of one team's ledger state.
type Snapshot struct {
	Meta      Meta                     `json:"meta"`
	Persons   map[string]PersonEntry   `json:"persons,omitempty"`
	Overrides map[string]OverrideEntry `json:"overrides,omitempty"`
}

// Meta carries snapshot provenance.
type Meta struct {
	GeneratedAt   string `json:"generated_at,omitempty"`
	SchemaVersion int    `json:"schema_version"`
	TeamID        int64  `json:"team_id"`
	SnapshotRev   string `json:"snapshot_rev,omitempty"`
}

// PersonEntry is a live identity, keyed by UUID in the snapshot.
type PersonEntry struct {
	CreatedAt string `json:"created_at"`
	Version   int64  `json:"version"`
}

// OverrideEntry is a ledger row, keyed by the absorbed (old) person UUID.
type OverrideEntry struct {
	OverridePersonID string `json:"override_person_id"`
	OldestEvent      string `json:"oldest_event"`
	Version          int64  `json:"version"`
}
