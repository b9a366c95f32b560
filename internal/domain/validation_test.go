package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePersonID(t *testing.T) {
	assert.NoError(t, ValidatePersonID("550e8400-e29b-41d4-a716-446655440000"))
	assert.NoError(t, ValidatePersonID(NewPersonID()))

	assert.Error(t, ValidatePersonID(""))
	assert.Error(t, ValidatePersonID("not-a-uuid"))
	assert.Error(t, ValidatePersonID("550E8400-E29B-41D4-A716-446655440000"), "uppercase form is not canonical")
	assert.Error(t, ValidatePersonID("{550e8400-e29b-41d4-a716-446655440000}"), "braced form is not canonical")
}

func TestValidateTeamID(t *testing.T) {
	assert.NoError(t, ValidateTeamID(1))
	assert.Error(t, ValidateTeamID(0))
	assert.Error(t, ValidateTeamID(-5))
}

func TestValidateTimestamp(t *testing.T) {
	ts, err := ValidateTimestamp("2023-05-01T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC), ts)

	_, err = ValidateTimestamp("2023-05-01")
	assert.Error(t, err)
	_, err = ValidateTimestamp("yesterday")
	assert.Error(t, err)
}

func TestEventTimeRoundTrip(t *testing.T) {
	ts := time.Date(2023, 5, 1, 12, 0, 0, 123_000_000, time.UTC)
	formatted := FormatEventTime(ts)
	assert.Equal(t, "2023-05-01T12:00:00.123Z", formatted)

	parsed, err := ParseEventTime(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

// The stored form must sort lexicographically in chronological order, since
// the repoint path takes the SQL MIN over the text column.
func TestEventTimeLexicographicOrder(t *testing.T) {
	times := []time.Time{
		time.Date(1999, 12, 31, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2023, 5, 1, 12, 0, 0, 1_000_000, time.UTC),
		time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 1; i < len(times); i++ {
		a, b := FormatEventTime(times[i-1]), FormatEventTime(times[i])
		assert.Less(t, a, b)
	}
}

func TestValidateResourceType(t *testing.T) {
	assert.NoError(t, ValidateResourceType("person"))
	assert.NoError(t, ValidateResourceType("team"))
	assert.NoError(t, ValidateResourceType("system"))
	assert.Error(t, ValidateResourceType("override"))
	assert.Error(t, ValidateResourceType(""))
}
