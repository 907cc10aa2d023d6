package cacode_test

import (
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/cacode"
	"github.com/stretchr/testify/assert"
)

func TestBalanceAllPRNs(t *testing.T) {
	for prn := 1; prn <= 32; prn++ {
		code := cacode.Generate(prn)
		plus, minus := cacode.Balance(code)
		assert.Equal(t, 512, plus, "prn %d", prn)
		assert.Equal(t, 511, minus, "prn %d", prn)
	}
}

func TestAutoCorrelationPeak(t *testing.T) {
	code := cacode.Generate(1)
	peak := cacode.CrossCorrelate(code, code, 0)
	assert.Equal(t, cacode.ChipCount, peak)
}

func TestCrossCorrelationTernary(t *testing.T) {
	allowed := map[int]bool{-65: true, -1: true, 63: true}
	a := cacode.Generate(1)
	b := cacode.Generate(2)
	for lag := 0; lag < cacode.ChipCount; lag += 37 {
		v := cacode.CrossCorrelate(a, b, lag)
		assert.True(t, allowed[v], "lag %d got %d", lag, v)
	}
}

func TestOutOfRangePRNIsZero(t *testing.T) {
	code := cacode.Generate(0)
	for _, c := range code {
		assert.Equal(t, int8(0), c)
	}
}
