package store

import (
	"testing"

	"github.com/idover/idover/internal/domain"
)

func TestCheckLedger_HealthyAfterMerges(t *testing.T) {
	s, teamID := setupStore(t)
	a := createPerson(t, s, teamID)
	b := createPerson(t, s, teamID)
	c := createPerson(t, s, teamID)

	if _, err := s.Merge(teamID, a, b, eventTime(1)); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if _, err := s.Merge(teamID, b, c, eventTime(2)); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	problems, err := s.CheckLedger(teamID)
	if err != nil {
		t.Fatalf("CheckLedger failed: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("expected no problems on a healthy ledger, got %+v", problems)
	}
}

func TestCheckLedger_DetectsChainAndLiveAbsorbed(t *testing.T) {
	s, teamID := setupStore(t)
	b := createPerson(t, s, teamID)
	c := createPerson(t, s, teamID)

	// Seed a two-hop chain by hand: a -> b -> c, with b still live. No
	// committed transaction produces this shape.
	a := "550e8400-e29b-41d4-a716-446655440000"
	for _, pair := range [][2]string{{a, b}, {b, c}} {
		_, err := s.DB().Exec(
			"INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version) VALUES (?, ?, ?, ?, 1)",
			teamID, pair[0], pair[1], domain.FormatEventTime(eventTime(1)))
		if err != nil {
			t.Fatalf("failed to seed override row: %v", err)
		}
	}

	problems, err := s.CheckLedger(teamID)
	if err != nil {
		t.Fatalf("CheckLedger failed: %v", err)
	}

	kinds := map[string]int{}
	for _, p := range problems {
		kinds[p.Kind]++
	}
	if kinds["chain_depth"] != 1 {
		t.Errorf("expected 1 chain_depth problem, got %d (%+v)", kinds["chain_depth"], problems)
	}
	if kinds["absorbed_still_live"] != 1 {
		t.Errorf("expected 1 absorbed_still_live problem, got %d (%+v)", kinds["absorbed_still_live"], problems)
	}
}

func TestCheckLedger_DetectsDanglingTarget(t *testing.T) {
	s, teamID := setupStore(t)

	// Foreign keys are per connection, so pin the pool to one connection
	// before switching them off to seed the broken row.
	s.DB().SetMaxOpenConns(1)
	if _, err := s.DB().Exec("PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("failed to disable foreign keys: %v", err)
	}
	_, err := s.DB().Exec(
		"INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version) VALUES (?, ?, ?, ?, 1)",
		teamID, "550e8400-e29b-41d4-a716-446655440000", "650e8400-e29b-41d4-a716-446655440000",
		domain.FormatEventTime(eventTime(1)))
	if err != nil {
		t.Fatalf("failed to seed dangling override: %v", err)
	}
	if _, err := s.DB().Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to re-enable foreign keys: %v", err)
	}

	problems, err := s.CheckLedger(teamID)
	if err != nil {
		t.Fatalf("CheckLedger failed: %v", err)
	}
	if len(problems) != 1 || problems[0].Kind != "dangling_target" {
		t.Fatalf("expected a single dangling_target problem, got %+v", problems)
	}
}

func TestCheckLedger_ScopedToTeam(t *testing.T) {
	s, teamID := setupStore(t)
	other, err := s.Teams.Create("other")
	if err != nil {
		t.Fatalf("Create team failed: %v", err)
	}

	b := createPerson(t, s, other.ID)
	c := createPerson(t, s, other.ID)
	a := "550e8400-e29b-41d4-a716-446655440000"
	for _, pair := range [][2]string{{a, b}, {b, c}} {
		_, err := s.DB().Exec(
			"INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version) VALUES (?, ?, ?, ?, 1)",
			other.ID, pair[0], pair[1], domain.FormatEventTime(eventTime(1)))
		if err != nil {
			t.Fatalf("failed to seed override row: %v", err)
		}
	}

	// The corruption lives in the other team; this team scans clean.
	problems, err := s.CheckLedger(teamID)
	if err != nil {
		t.Fatalf("CheckLedger failed: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("expected no problems for unaffected team, got %+v", problems)
	}
}
