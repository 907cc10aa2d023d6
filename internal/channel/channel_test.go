package channel_test

import (
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/channel"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/stretchr/testify/assert"
)

func TestSyncToRangeStaysWithinBounds(t *testing.T) {
	c := channel.NewChannel(7)
	c.Reset(7, builderFor(7))

	g0 := gtime.GPSTime{Week: 2100, Sec: 0}
	tRange := gtime.GPSTime{Week: 2100, Sec: 1800}
	c.SyncToRange(g0, tRange, 2.2e7)

	assert.GreaterOrEqual(t, c.CodePhase, 0.0)
	assert.Less(t, c.CodePhase, 1023.0)
	assert.GreaterOrEqual(t, c.CodeRepeats, 0)
	assert.Less(t, c.CodeRepeats, 20)
	assert.GreaterOrEqual(t, c.BitIdx, 0)
	assert.Less(t, c.BitIdx, 30)
	assert.GreaterOrEqual(t, c.WordIdx, 0)
	assert.Less(t, c.WordIdx, 10)
	assert.GreaterOrEqual(t, c.SubIdx, 0)
	assert.Less(t, c.SubIdx, 5)
}

func TestSyncToRangeIsDeterministic(t *testing.T) {
	g0 := gtime.GPSTime{Week: 2100, Sec: 0}
	tRange := gtime.GPSTime{Week: 2100, Sec: 42}

	a := channel.NewChannel(3)
	a.Reset(3, builderFor(3))
	a.SyncToRange(g0, tRange, 2.3e7)

	b := channel.NewChannel(3)
	b.Reset(3, builderFor(3))
	b.SyncToRange(g0, tRange, 2.3e7)

	assert.Equal(t, a.CodePhase, b.CodePhase)
	assert.Equal(t, a.WordIdx, b.WordIdx)
	assert.Equal(t, a.BitIdx, b.BitIdx)
	assert.Equal(t, a.SubIdx, b.SubIdx)
	assert.Equal(t, a.DataBit, b.DataBit)
}
