package snapshot

import (
	"fmt"
	"time"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/store"
)

// Export builds a snapshot of one team's ledger. GeneratedAt and SnapshotRev
// are filled by Finalize so that the revision hash covers stable content only.
func Export(st *store.Store, teamID int64) (*Snapshot, error) {
	persons, err := st.Persons.ListByTeam(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	overrides, err := st.Overrides.ListByTeam(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	s := &Snapshot{
		Meta: Meta{
			SchemaVersion: SchemaVersion,
			TeamID:        teamID,
		},
	}

	if len(persons) > 0 {
		s.Persons = make(map[string]PersonEntry, len(persons))
		for _, p := range persons {
			s.Persons[p.UUID] = PersonEntry{
				CreatedAt: domain.FormatEventTime(p.CreatedAt),
				Version:   p.Version,
			}
		}
	}

	if len(overrides) > 0 {
		s.Overrides = make(map[string]OverrideEntry, len(overrides))
		for _, o := range overrides {
			s.Overrides[o.OldPersonID] = OverrideEntry{
				OverridePersonID: o.OverridePersonID,
				OldestEvent:      domain.FormatEventTime(o.OldestEvent),
				Version:          o.Version,
			}
		}
	}

	return s, nil
}

// Finalize stamps the snapshot revision (hash of the canonical content) and
// the generation time, returning the finalized canonical JSON.
func Finalize(s *Snapshot, now time.Time) ([]byte, error) {
	s.Meta.SnapshotRev = ""
	s.Meta.GeneratedAt = ""

	content, err := CanonicalJSON(s)
	if err != nil {
		return nil, err
	}

	s.Meta.SnapshotRev = ComputeSnapshotRev(content)
	s.Meta.GeneratedAt = domain.FormatEventTime(now)

	return CanonicalJSON(s)
}
