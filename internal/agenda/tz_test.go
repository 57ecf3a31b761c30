package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRoundTrip(t *testing.T) {
	ba, err := time.LoadLocation(zoneBA)
	require.NoError(t, err)
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	origin := time.Date(2025, 6, 2, 9, 0, 0, 0, ba)

	there := Project(origin, madrid)
	assert.Equal(t, "14:00", there.Time)
	assert.Equal(t, "2025-06-02T14:00:00+02:00", there.DateTime)

	instant, err := time.Parse(time.RFC3339, there.DateTime)
	require.NoError(t, err)

	back := Project(instant, ba)
	assert.Equal(t, "09:00", back.Time)
	assert.Equal(t, origin.Format(time.RFC3339), back.DateTime)
}

func TestProjectAcrossDSTTransition(t *testing.T) {
	ba, err := time.LoadLocation(zoneBA)
	require.NoError(t, err)
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	// Madrid springs forward on 2025-03-30; Buenos Aires keeps UTC-3
	// year round, so the same BA wall clock lands on different Madrid
	// offsets either side of the transition.
	before := Project(time.Date(2025, 3, 29, 10, 0, 0, 0, ba), madrid)
	assert.Equal(t, "14:00", before.Time)
	assert.Equal(t, "2025-03-29T14:00:00+01:00", before.DateTime)

	after := Project(time.Date(2025, 3, 31, 10, 0, 0, 0, ba), madrid)
	assert.Equal(t, "15:00", after.Time)
	assert.Equal(t, "2025-03-31T15:00:00+02:00", after.DateTime)
}
