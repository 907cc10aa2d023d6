package channel_test

import (
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/channel"
	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/navmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builderFor(prn int) *navmsg.Builder {
	e := &ephem.Record{Valid: true, PRN: prn, TOE: gtime.GPSTime{Week: 2100, Sec: 0}, TOC: gtime.GPSTime{Week: 2100, Sec: 0}}
	raw := navmsg.EphToSubframes(e, &ephem.IonoUTC{})
	return navmsg.NewBuilder(raw, 0)
}

func TestAllocateIsIdempotent(t *testing.T) {
	var table channel.AllocTable
	visible := []channel.Visible{
		{PRN: 2, Elev: 0.9}, {PRN: 5, Elev: 0.3}, {PRN: 11, Elev: 0.6},
	}

	table.Allocate(visible, builderFor)
	first := snapshot(&table)

	table.Allocate(visible, builderFor)
	second := snapshot(&table)

	assert.Equal(t, first, second, "re-allocating the same visible set must not move any satellite")
}

func TestAllocateEvictsOutOfView(t *testing.T) {
	var table channel.AllocTable
	table.Allocate([]channel.Visible{{PRN: 9, Elev: 0.5}}, builderFor)
	require.Len(t, table.Active(), 1)

	table.Allocate(nil, builderFor)
	assert.Len(t, table.Active(), 0)
}

func TestAllocateFillsLowestPRNFirstRegardlessOfElevation(t *testing.T) {
	var table channel.AllocTable
	// PRN 30 has the highest elevation but must not jump ahead of lower
	// PRNs competing for the same free slots (spec.md §4.5: ascending
	// satellite index, first idle channel, no elevation priority).
	visible := []channel.Visible{
		{PRN: 30, Elev: 1.2}, {PRN: 4, Elev: 0.1}, {PRN: 17, Elev: 0.05},
	}
	table.Allocate(visible, builderFor)

	var prns []int
	for _, c := range table.Active() {
		prns = append(prns, c.PRN)
	}
	assert.ElementsMatch(t, []int{4, 17, 30}, prns)
	assert.Equal(t, 4, table.Slots[0].PRN, "lowest PRN takes the first free slot")
	assert.Equal(t, 17, table.Slots[1].PRN)
	assert.Equal(t, 30, table.Slots[2].PRN)
}

func TestAllocateRespectsCapacity(t *testing.T) {
	var table channel.AllocTable
	var visible []channel.Visible
	for prn := 1; prn <= channel.MaxChannels+5; prn++ {
		visible = append(visible, channel.Visible{PRN: prn, Elev: float64(prn)})
	}
	table.Allocate(visible, builderFor)
	assert.Len(t, table.Active(), channel.MaxChannels)
}

func snapshot(t *channel.AllocTable) [channel.MaxChannels]int {
	var out [channel.MaxChannels]int
	for i, c := range t.Slots {
		if c != nil {
			out[i] = c.PRN
		}
	}
	return out
}
