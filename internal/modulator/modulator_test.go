package modulator_test

import (
	"math"
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/channel"
	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/modulator"
	"github.com/Mictronics/pluto-gps-sim/internal/navmsg"
	"github.com/Mictronics/pluto-gps-sim/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshTable(t *testing.T) *channel.AllocTable {
	t.Helper()
	var table channel.AllocTable
	table.Allocate([]channel.Visible{{PRN: 7, Elev: math.Pi / 3}}, func(prn int) *navmsg.Builder {
		e := &ephem.Record{Valid: true, PRN: prn, TOE: gtime.GPSTime{Week: 2100}, TOC: gtime.GPSTime{Week: 2100}}
		raw := navmsg.EphToSubframes(e, &ephem.IonoUTC{})
		return navmsg.NewBuilder(raw, 0)
	})
	table.Slots[0].CarrierFreq = 1500
	table.Slots[0].CodeFreq = gtime.CodeFreq
	table.Slots[0].LastRange = 2.2e7
	return &table
}

func TestGenerateSampleIsDeterministic(t *testing.T) {
	tableA := freshTable(t)
	tableB := freshTable(t)

	modA := modulator.New(4.0e6, tables.DAC16, func() modulator.PhaseMode { return &modulator.FloatPhase{} })
	modB := modulator.New(4.0e6, tables.DAC16, func() modulator.PhaseMode { return &modulator.FloatPhase{} })

	blockA := modA.GenerateBlock(tableA, 200)
	blockB := modB.GenerateBlock(tableB, 200)

	require.Equal(t, len(blockA), len(blockB))
	assert.Equal(t, blockA, blockB)
}

func TestGenerateBlockHasNonTrivialEnergy(t *testing.T) {
	table := freshTable(t)
	mod := modulator.New(4.0e6, tables.DAC16, func() modulator.PhaseMode { return &modulator.FloatPhase{} })

	block := mod.GenerateBlock(table, 4000)
	var energy float64
	for _, s := range block {
		energy += float64(s.I)*float64(s.I) + float64(s.Q)*float64(s.Q)
	}
	assert.Greater(t, energy, 0.0)
}

func TestIntPhaseStaysWithinTableRange(t *testing.T) {
	p := &modulator.IntPhase{}
	for i := 0; i < 1000; i++ {
		idx := p.Advance(0.01)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, tables.TableSize)
	}
}
