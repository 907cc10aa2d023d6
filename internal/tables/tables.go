// Package tables holds the static, process-wide, read-only lookup tables
// spec.md §3 describes: the 1024-entry carrier sine/cosine table derived
// from a 512-entry sine at build time, and the 37-entry receiver antenna
// gain pattern.
package tables

import "math"

// TableSize is the number of entries in the full-circle sine/cosine table;
// a 10-bit carrier-phase index selects one entry.
const TableSize = 1024

const halfTableSize = TableSize / 2

// Sine and Cosine are built once at init() from a 512-entry sine table, the
// way spec.md §3 describes: "derived from a 512-entry sine at build time."
var (
	Sine   [TableSize]float64
	Cosine [TableSize]float64
)

func init() {
	var half [halfTableSize]float64
	for i := range half {
		half[i] = math.Sin(2 * math.Pi * float64(i) / float64(TableSize))
	}
	for i := 0; i < halfTableSize; i++ {
		Sine[i] = half[i]
		Sine[i+halfTableSize] = -half[i]
	}
	for i := 0; i < TableSize; i++ {
		Cosine[i] = Sine[(i+TableSize/4)%TableSize]
	}
}

// AntennaPattern is the 37-entry receiver antenna gain pattern, dB at 5°
// boresight steps from zenith (0°) to the horizon and below (180°).
// Values follow the reference's representative hemispherical dipole-like
// roll-off: near-unity gain at zenith, smooth falloff toward the horizon,
// increasing rejection below it.
var AntennaPattern = [37]float64{
	0.0, 0.0, 0.1, 0.2, 0.3, 0.5, 0.7, 1.0, 1.3, 1.7,
	2.1, 2.6, 3.1, 3.7, 4.4, 5.1, 5.9, 6.8, 7.8, 8.9,
	10.1, 11.4, 12.8, 14.3, 15.9, 17.6, 19.4, 21.3, 23.3, 25.4,
	27.6, 29.9, 32.3, 34.8, 37.4, 40.1, 42.9,
}

// AntennaGainDB returns the antenna gain in dB for the given elevation
// (radians), per spec.md §4.6's "index = floor((90 - el_deg) / 5)".
func AntennaGainDB(elRad float64) float64 {
	elDeg := elRad * 180 / math.Pi
	idx := int(math.Floor((90 - elDeg) / 5))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(AntennaPattern) {
		idx = len(AntennaPattern) - 1
	}
	return AntennaPattern[idx]
}

// DACProfile describes a hardware output quantizer: bit depth, clamp range
// and an I/Q byte-packing shift. Selecting a hardware variant is a
// construction-time value choice (spec.md §9), not a build tag, so the
// simulator can switch DAC widths with a flag instead of a recompile.
type DACProfile struct {
	Name     string
	Bits     int
	Min, Max int32
	IQShift  uint
	IQOffset int32
}

// Quantize maps a unit-scale float sample into this profile's signed
// integer range: round and offset, post-shift by IQShift (the DAC-width
// packing knob, spec.md §4.6's "(acc + iq_offset) >> iq_shift"), then
// clamp at the edges.
func (p DACProfile) Quantize(sample float64) int32 {
	v := int32(math.Round(sample*float64(p.Max))) + p.IQOffset
	if p.IQShift > 0 {
		v >>= p.IQShift
	}
	if v > p.Max {
		v = p.Max
	}
	if v < p.Min {
		v = p.Min
	}
	return v
}

// Preset DAC profiles. DAC8 intentionally clamps to ±250, not the ±255 a
// full 8-bit signed range would allow — spec.md §9 calls this out as a
// preserved quirk of the reference hardware's AD936x output stage, not a
// bug to silently correct.
var (
	DAC8 = DACProfile{Name: "dac8", Bits: 8, Min: -250, Max: 250, IQShift: 0}
	DAC9 = DACProfile{Name: "dac9", Bits: 9, Min: -500, Max: 500, IQShift: 0}
	DAC12 = DACProfile{Name: "dac12", Bits: 12, Min: -2048, Max: 2047, IQShift: 4}
	DAC16 = DACProfile{Name: "dac16", Bits: 16, Min: -32768, Max: 32767, IQShift: 0}
)

// ProfileByName resolves a DAC profile from its CLI-facing name, or false
// if unrecognized.
func ProfileByName(name string) (DACProfile, bool) {
	switch name {
	case "dac8", "":
		return DAC8, true
	case "dac9":
		return DAC9, true
	case "dac12":
		return DAC12, true
	case "dac16":
		return DAC16, true
	default:
		return DACProfile{}, false
	}
}
