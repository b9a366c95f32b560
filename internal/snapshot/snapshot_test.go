package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idover/idover/internal/store"
	"github.com/idover/idover/internal/testutil"
)

// setupLedger creates a migrated temp database with one team and returns the
// store plus the team id.
func setupLedger(t *testing.T) (*store.Store, int64) {
	t.Helper()
	s := store.New(testutil.TempDB(t))
	team, err := s.Teams.Create("test")
	require.NoError(t, err)
	return s, team.ID
}

// seedMergedPair creates two persons and merges the first into the second,
// returning (old, target).
func seedMergedPair(t *testing.T, s *store.Store, teamID int64) (string, string) {
	t.Helper()
	old, err := s.Persons.Create(teamID, "")
	require.NoError(t, err)
	target, err := s.Persons.Create(teamID, "")
	require.NoError(t, err)
	_, err = s.Merge(teamID, old.UUID, target.UUID, time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return old.UUID, target.UUID
}

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestExportFinalize_Deterministic(t *testing.T) {
	s, teamID := setupLedger(t)
	seedMergedPair(t, s, teamID)

	first, err := Export(s, teamID)
	require.NoError(t, err)
	second, err := Export(s, teamID)
	require.NoError(t, err)

	firstBytes, err := Finalize(first, fixedNow)
	require.NoError(t, err)
	secondBytes, err := Finalize(second, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, string(firstBytes), string(secondBytes),
		"two exports of the same state must be byte-identical")
	assert.Contains(t, first.Meta.SnapshotRev, "sha256:")
}

func TestSnapshotRev_CoversContentOnly(t *testing.T) {
	s, teamID := setupLedger(t)
	seedMergedPair(t, s, teamID)

	snap, err := Export(s, teamID)
	require.NoError(t, err)

	earlyBytes, err := Finalize(snap, fixedNow)
	require.NoError(t, err)
	earlyRev := snap.Meta.SnapshotRev

	lateBytes, err := Finalize(snap, fixedNow.Add(48*time.Hour))
	require.NoError(t, err)

	// Different generation times, same content: same revision.
	assert.Equal(t, earlyRev, snap.Meta.SnapshotRev)
	assert.NotEqual(t, string(earlyBytes), string(lateBytes))
}

func TestSnapshotRev_ChangesWithContent(t *testing.T) {
	s, teamID := setupLedger(t)
	seedMergedPair(t, s, teamID)

	before, err := Export(s, teamID)
	require.NoError(t, err)
	_, err = Finalize(before, fixedNow)
	require.NoError(t, err)

	// Another merge changes the ledger and must change the revision.
	seedMergedPair(t, s, teamID)
	after, err := Export(s, teamID)
	require.NoError(t, err)
	_, err = Finalize(after, fixedNow)
	require.NoError(t, err)

	assert.NotEqual(t, before.Meta.SnapshotRev, after.Meta.SnapshotRev)
}

func TestRestoreRoundTrip(t *testing.T) {
	source, teamID := setupLedger(t)
	seedMergedPair(t, source, teamID)
	seedMergedPair(t, source, teamID)

	exported, err := Export(source, teamID)
	require.NoError(t, err)
	wantBytes, err := Finalize(exported, fixedNow)
	require.NoError(t, err)

	// Restore into an empty ledger with the same team id.
	dest, destTeamID := setupLedger(t)
	require.Equal(t, teamID, destTeamID)

	parsed, err := Parse(wantBytes)
	require.NoError(t, err)
	require.NoError(t, Restore(dest, parsed))

	reExported, err := Export(dest, destTeamID)
	require.NoError(t, err)
	gotBytes, err := Finalize(reExported, fixedNow.Add(time.Hour))
	require.NoError(t, err)

	diff, err := Diff(wantBytes, gotBytes)
	require.NoError(t, err)
	assert.Empty(t, diff, "restored ledger must match the snapshot:\n%s", diff)
}

func TestRestore_IsIdempotentForPersons(t *testing.T) {
	s, teamID := setupLedger(t)
	old, _ := seedMergedPair(t, s, teamID)

	snap, err := Export(s, teamID)
	require.NoError(t, err)
	data, err := Finalize(snap, fixedNow)
	require.NoError(t, err)

	// Restoring over the live ledger must not duplicate or clobber rows.
	parsed, err := Parse(data)
	require.NoError(t, err)
	require.NoError(t, Restore(s, parsed))

	var personCount int
	require.NoError(t, s.DB().QueryRow(
		"SELECT COUNT(*) FROM persons WHERE team_id = ?", teamID).Scan(&personCount))
	assert.Equal(t, 1, personCount)

	override, err := s.Overrides.Get(teamID, old)
	require.NoError(t, err)
	require.NotNil(t, override)
	// The second write bumps the row version but the mapping is unchanged.
	assert.Equal(t, int64(2), override.Version)
}

func TestDiff_DetectsDrift(t *testing.T) {
	s, teamID := setupLedger(t)
	old, _ := seedMergedPair(t, s, teamID)

	snap, err := Export(s, teamID)
	require.NoError(t, err)
	wantBytes, err := Finalize(snap, fixedNow)
	require.NoError(t, err)

	// Drift: the override row disappears from the live ledger.
	_, err = s.DeletePerson(teamID, old)
	require.NoError(t, err)

	drifted, err := Export(s, teamID)
	require.NoError(t, err)
	gotBytes, err := Finalize(drifted, fixedNow)
	require.NoError(t, err)

	diff, err := Diff(wantBytes, gotBytes)
	require.NoError(t, err)
	assert.NotEmpty(t, diff)
	assert.Contains(t, diff, old)
}

func TestParse_RejectsUnknownSchemaVersion(t *testing.T) {
	_, err := Parse([]byte(`{"meta":{"schema_version":99,"team_id":1}}`))
	assert.ErrorContains(t, err, "unsupported snapshot schema version")
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"meta":`))
	assert.Error(t, err)
}
