package tables_test

import (
	"math"
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/tables"
	"github.com/stretchr/testify/assert"
)

func TestSineCosineQuarterSymmetry(t *testing.T) {
	assert.InDelta(t, 0.0, tables.Sine[0], 1e-9)
	assert.InDelta(t, 1.0, tables.Sine[tables.TableSize/4], 1e-9)
	assert.InDelta(t, 0.0, tables.Sine[tables.TableSize/2], 1e-9)
	assert.InDelta(t, 1.0, tables.Cosine[0], 1e-9)
}

func TestSineCosinePythagorean(t *testing.T) {
	for i := 0; i < tables.TableSize; i += 17 {
		s, c := tables.Sine[i], tables.Cosine[i]
		assert.InDelta(t, 1.0, s*s+c*c, 1e-9)
	}
}

func TestAntennaGainMonotonicNearZenith(t *testing.T) {
	zenith := tables.AntennaGainDB(math.Pi / 2)
	horizon := tables.AntennaGainDB(0)
	assert.Less(t, zenith, horizon)
}

func TestDAC8ClampsToTwoFifty(t *testing.T) {
	assert.Equal(t, int32(250), tables.DAC8.Quantize(10.0))
	assert.Equal(t, int32(-250), tables.DAC8.Quantize(-10.0))
}

func TestProfileByName(t *testing.T) {
	p, ok := tables.ProfileByName("dac12")
	assert.True(t, ok)
	assert.Equal(t, 12, p.Bits)

	_, ok = tables.ProfileByName("bogus")
	assert.False(t, ok)
}
