package modulator

import (
	"math"

	"github.com/Mictronics/pluto-gps-sim/internal/cacode"
	"github.com/Mictronics/pluto-gps-sim/internal/channel"
	"github.com/Mictronics/pluto-gps-sim/internal/tables"
)

// Sample is one quantized I/Q pair ready for the output sink.
type Sample struct {
	I, Q int32
}

// Modulator owns one carrier phase tracker per channel slot and produces
// the composite baseband I/Q stream by summing every active channel's
// BPSK signal (spec.md §6). Its state is entirely the per-slot phase
// trackers plus the channels it is handed each call, so two modulators
// fed the same channel states and sample count always produce the same
// bytes (P8).
type Modulator struct {
	SampleRate float64
	DAC        tables.DACProfile

	newPhase func() PhaseMode
	carriers [channel.MaxChannels]PhaseMode
	lastPRN  [channel.MaxChannels]int
}

// New builds a Modulator. newPhase selects FloatPhase or IntPhase per the
// construction-time hardware variant choice (spec.md §9).
func New(sampleRate float64, dac tables.DACProfile, newPhase func() PhaseMode) *Modulator {
	m := &Modulator{SampleRate: sampleRate, DAC: dac, newPhase: newPhase}
	for i := range m.carriers {
		m.carriers[i] = newPhase()
		m.lastPRN[i] = -1
	}
	return m
}

// pathLossReferenceRange is the reference distance (meters) the path-loss
// gain is scaled against: 20 200 km, nominal GPS orbit altitude above the
// receiver (spec.md §4.6's "20 200 000 / d").
const pathLossReferenceRange = 20200000.0

// GenerateSample advances every active channel in table by one sample
// period and returns the quantized composite I/Q sample. Each channel's
// contribution is accumulated, not averaged: a real receiver sees the sum
// of every satellite's signal, so a composite tracking more satellites has
// more energy, not the same energy spread thinner (spec.md §4.6's "64-bit
// signed accumulators").
func (m *Modulator) GenerateSample(table *channel.AllocTable) Sample {
	var iAcc, qAcc float64

	for i, c := range table.Slots {
		if c == nil {
			m.lastPRN[i] = -1
			continue
		}
		if m.lastPRN[i] != c.PRN {
			m.carriers[i] = m.newPhase()
			m.lastPRN[i] = c.PRN
		}

		codeIdx := int(c.CodePhase) % cacode.ChipCount
		chip := float64(c.Code[codeIdx])
		bit := float64(c.DataBit)
		value := chip * bit

		carrierCyclesPerSample := c.CarrierFreq / m.SampleRate
		idx := m.carriers[i].Advance(carrierCyclesPerSample)

		pathLoss := 1.0
		if c.LastRange > 0 {
			pathLoss = pathLossReferenceRange / c.LastRange
		}
		gainDB := tables.AntennaGainDB(c.El)
		gain := pathLoss * math.Pow(10, -gainDB/20)

		iAcc += value * tables.Cosine[idx] * gain
		qAcc += value * tables.Sine[idx] * gain

		m.advanceCode(c)
	}

	return Sample{
		I: m.DAC.Quantize(iAcc),
		Q: m.DAC.Quantize(qAcc),
	}
}

func (m *Modulator) advanceCode(c *channel.Channel) {
	c.CodePhase += c.CodeFreq / m.SampleRate
	if c.CodePhase >= float64(cacode.ChipCount) {
		c.CodePhase -= float64(cacode.ChipCount)
		c.CodeRepeats++
		if c.CodeRepeats >= 20 { // one nav bit = 20ms = 20 C/A periods
			c.CodeRepeats = 0
			c.AdvanceDataBit()
		}
	}
}

// GenerateBlock fills n consecutive samples (P9: energy sanity is checked
// over a block like this one).
func (m *Modulator) GenerateBlock(table *channel.AllocTable, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = m.GenerateSample(table)
	}
	return out
}
