package station_test

import (
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/station"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownStation(t *testing.T) {
	e, ok := station.Lookup("tok")
	require.True(t, ok)
	assert.InDelta(t, 35.681236, e.Geo.Lat*180/3.14159265358979323846, 1e-4)
}

func TestLookupUnknownStation(t *testing.T) {
	_, ok := station.Lookup("zzz")
	assert.False(t, ok)
}

func TestAllReturnsDirectory(t *testing.T) {
	assert.GreaterOrEqual(t, len(station.All()), 5)
}
