package store

import (
	"testing"
	"time"

	"github.com/idover/idover/internal/domain"
	"github.com/idover/idover/internal/testutil"
)

// setupStore creates a migrated temp database with one team.
func setupStore(t *testing.T) (*Store, int64) {
	t.Helper()
	s := New(testutil.TempDB(t))
	team, err := s.Teams.Create("test")
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return s, team.ID
}

// createPerson registers a fresh person and returns its UUID.
func createPerson(t *testing.T, s *Store, teamID int64) string {
	t.Helper()
	person, err := s.Persons.Create(teamID, "")
	if err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	return person.UUID
}

func eventTime(day int) time.Time {
	return time.Date(2023, 5, day, 12, 0, 0, 0, time.UTC)
}

func TestTeamStore_CreateAndList(t *testing.T) {
	s := New(testutil.TempDB(t))

	a, err := s.Teams.Create("alpha")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := s.Teams.Create("beta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct team ids, got %d twice", a.ID)
	}

	teams, err := s.Teams.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if teams[0].Name != "alpha" || teams[1].Name != "beta" {
		t.Errorf("unexpected team order: %q, %q", teams[0].Name, teams[1].Name)
	}
}

func TestPersonStore_CreateAndExists(t *testing.T) {
	s, teamID := setupStore(t)

	person, err := s.Persons.Create(teamID, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if person.UUID == "" {
		t.Error("expected UUID to be generated")
	}
	if person.Version != 1 {
		t.Errorf("expected version 1, got %d", person.Version)
	}

	exists, err := s.Persons.Exists(teamID, person.UUID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected person to exist")
	}

	// Event logged from the ingestion boundary
	var eventCount int
	s.DB().QueryRow("SELECT COUNT(*) FROM event_log WHERE resource_uuid = ? AND event_type = 'person.created'", person.UUID).Scan(&eventCount)
	if eventCount != 1 {
		t.Errorf("expected 1 person.created event, got %d", eventCount)
	}
}

func TestPersonStore_CreateDuplicateConflicts(t *testing.T) {
	s, teamID := setupStore(t)
	personID := createPerson(t, s, teamID)

	_, err := s.Persons.Create(teamID, personID)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError for duplicate person, got %v", err)
	}
}

func TestPersonStore_CreateForcedUUID(t *testing.T) {
	s, teamID := setupStore(t)

	forced := "550e8400-e29b-41d4-a716-446655440000"
	person, err := s.Persons.Create(teamID, forced)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if person.UUID != forced {
		t.Errorf("expected forced UUID %s, got %s", forced, person.UUID)
	}
}

func TestPersonStore_DeleteNotFound(t *testing.T) {
	s, teamID := setupStore(t)

	err := s.Persons.Delete(teamID, "550e8400-e29b-41d4-a716-446655440000")
	if err == nil {
		t.Fatal("expected error deleting unknown person")
	}
	if domain.IsReferentialViolation(err) || domain.IsConflict(err) {
		t.Fatalf("expected plain not-found error, got classified %v", err)
	}
}

func TestPersonStore_CorruptTimestampSurfaces(t *testing.T) {
	s, teamID := setupStore(t)
	personID := createPerson(t, s, teamID)

	_, err := s.DB().Exec(
		"UPDATE persons SET created_at = 'not-a-timestamp' WHERE team_id = ? AND uuid = ?",
		teamID, personID)
	if err != nil {
		t.Fatalf("failed to corrupt created_at: %v", err)
	}

	if _, err := s.Persons.Get(teamID, personID); err == nil {
		t.Error("expected Get to report the unparseable created_at")
	}
	if _, err := s.Persons.ListByTeam(teamID); err == nil {
		t.Error("expected ListByTeam to report the unparseable created_at")
	}
}

func TestOverrideStore_ResolveUnmergedIsIdentity(t *testing.T) {
	s, teamID := setupStore(t)
	personID := createPerson(t, s, teamID)

	canonical, err := s.Overrides.Resolve(teamID, personID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if canonical != personID {
		t.Errorf("expected identity resolution, got %s", canonical)
	}
}

func TestOverrideStore_UpsertKeepsEarliestEvent(t *testing.T) {
	s, teamID := setupStore(t)
	target := createPerson(t, s, teamID)
	old := "550e8400-e29b-41d4-a716-446655440000"

	if err := s.Overrides.Upsert(teamID, old, target, eventTime(10)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	// Later timestamp must not advance oldest_event
	if err := s.Overrides.Upsert(teamID, old, target, eventTime(20)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	override, err := s.Overrides.Get(teamID, old)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if override == nil {
		t.Fatal("expected override row")
	}
	if !override.OldestEvent.Equal(eventTime(10)) {
		t.Errorf("expected oldest_event %v, got %v", eventTime(10), override.OldestEvent)
	}
	if override.Version != 2 {
		t.Errorf("expected version 2 after upsert, got %d", override.Version)
	}

	// Earlier timestamp rewinds it
	if err := s.Overrides.Upsert(teamID, old, target, eventTime(5)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	override, _ = s.Overrides.Get(teamID, old)
	if !override.OldestEvent.Equal(eventTime(5)) {
		t.Errorf("expected oldest_event %v, got %v", eventTime(5), override.OldestEvent)
	}
}
