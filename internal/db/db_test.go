package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestMigrate(t *testing.T) {
	database := openTestDB(t)

	applied, err := database.MigrateWithInfo()
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("expected at least one migration to apply")
	}

	// All ledger tables exist afterwards.
	for _, table := range []string{"teams", "persons", "person_overrides", "event_log"} {
		var count int
		err := database.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database := openTestDB(t)

	if err := database.Migrate(); err != nil {
		t.Fatalf("first Migrate failed: %v", err)
	}
	applied, err := database.MigrateWithInfo()
	if err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no migrations on second run, got %v", applied)
	}
}

func TestMigrationStatus(t *testing.T) {
	database := openTestDB(t)

	applied, pending, err := database.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no applied migrations on a fresh database, got %v", applied)
	}
	if len(pending) == 0 {
		t.Error("expected pending migrations on a fresh database")
	}

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	applied, pending, err = database.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending migrations after Migrate, got %v", pending)
	}
	if len(applied) == 0 {
		t.Error("expected applied migrations after Migrate")
	}
}

func TestRequiresMigrationError(t *testing.T) {
	database := openTestDB(t)

	err := database.RequiresMigrationError()
	if err == nil {
		t.Fatal("expected error on an unmigrated database")
	}
	if !strings.Contains(err.Error(), "idoveradm migrate") {
		t.Errorf("expected hint to run idoveradm migrate, got %q", err.Error())
	}

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := database.RequiresMigrationError(); err != nil {
		t.Errorf("expected nil after Migrate, got %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database := openTestDB(t)
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	// Override rows must reference a live person.
	_, err := database.Exec(`
		INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version)
		VALUES (1, '550e8400-e29b-41d4-a716-446655440000', '650e8400-e29b-41d4-a716-446655440000', '2023-05-01T12:00:00.000Z', 1)
	`)
	if err == nil {
		t.Fatal("expected foreign key violation for dangling override target")
	}
}

func TestSelfOverrideRejectedBySchema(t *testing.T) {
	database := openTestDB(t)
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	_, err := database.Exec("INSERT INTO teams (name, api_token) VALUES ('t', 'tok')")
	if err != nil {
		t.Fatalf("failed to insert team: %v", err)
	}
	_, err = database.Exec("INSERT INTO persons (team_id, uuid) VALUES (1, '550e8400-e29b-41d4-a716-446655440000')")
	if err != nil {
		t.Fatalf("failed to insert person: %v", err)
	}

	_, err = database.Exec(`
		INSERT INTO person_overrides (team_id, old_person_id, override_person_id, oldest_event, version)
		VALUES (1, '550e8400-e29b-41d4-a716-446655440000', '550e8400-e29b-41d4-a716-446655440000', '2023-05-01T12:00:00.000Z', 1)
	`)
	if err == nil {
		t.Fatal("expected check constraint to reject a self override")
	}
}
