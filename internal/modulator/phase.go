// Package modulator runs the per-sample hot loop that sums every active
// channel's BPSK-modulated carrier into a composite baseband I/Q stream
// and quantizes it for the output DAC (spec.md §6, P8, P9).
package modulator

import "github.com/Mictronics/pluto-gps-sim/internal/tables"

// PhaseMode advances a carrier phase accumulator by a fractional-cycle
// step and returns the current 1024-entry sine/cosine table index. Two
// concrete strategies are offered because the reference hardware variants
// disagree on whether float drift over a long capture is acceptable
// (spec.md §9): picking one is a construction-time value choice, not a
// build tag.
type PhaseMode interface {
	Advance(deltaCycles float64) int
}

// FloatPhase tracks phase as a wrapped float64 in cycles. Simple and
// exact for short runs, but accumulates float rounding error over a long
// capture.
type FloatPhase struct {
	phase float64
}

func (p *FloatPhase) Advance(delta float64) int {
	p.phase += delta
	p.phase -= float64(int(p.phase))
	if p.phase < 0 {
		p.phase += 1
	}
	return int(p.phase * tables.TableSize)
}

// IntPhase tracks phase as a 25-bit fixed-point accumulator, the way the
// reference hardware's NCO does it: no float drift, at the cost of a
// quantized frequency step.
type IntPhase struct {
	acc uint32
}

const intPhaseBits = 25

func (p *IntPhase) Advance(deltaCycles float64) int {
	const mask = uint32(1)<<intPhaseBits - 1
	step := uint32(int64(deltaCycles * float64(uint32(1)<<intPhaseBits)))
	p.acc = (p.acc + step) & mask
	return int(p.acc >> (intPhaseBits - 10))
}
