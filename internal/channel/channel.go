// Package channel models one simulated GPS L1 C/A signal path — PRN, Gold
// code, carrier/code phase state and navigation word ring — and the
// fixed-capacity scheduler that assigns visible satellites to the
// transmitter's channel slots (spec.md §5, P7).
package channel

import (
	"math"

	"github.com/Mictronics/pluto-gps-sim/internal/cacode"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/navmsg"
)

// MaxChannels is the number of simultaneous signal paths the transmitter
// can synthesize, mirroring the reference hardware's channel count.
const MaxChannels = 12

// Channel carries one satellite's modulation state across simulation
// steps, the way the teacher's rtksvr.go channel table holds per-receiver
// observation state across epochs, generalized here from "decode from"
// to "generate onto."
type Channel struct {
	PRN    int
	Active bool

	Code []int8 // 1023 chips, ±1

	CarrierFreq float64 // Hz, carrier Doppler (baseband offset from L1)
	CodeFreq    float64 // chips/s, Doppler-shifted

	CodePhase    float64 // chips, 0..1023
	CarrierPhase float64 // cycles, wraps at 1.0
	CodeRepeats  int     // completed C/A periods since the last data-bit edge (0..19)

	Builder   *navmsg.Builder
	Frame     navmsg.Frame
	WordIdx   int // which of the 10 words in the current subframe
	BitIdx    int // which of the 30 bits in the current word
	SubIdx    int // which of the 5 subframes in the current frame

	DataBit int8 // ±1, current navigation data bit

	Az, El    float64
	LastRange float64 // meters, most recent pseudorange
}

// NewChannel allocates a channel for prn, generating its Gold code once
// (it never changes for the lifetime of the allocation).
func NewChannel(prn int) *Channel {
	return &Channel{
		PRN:     prn,
		Code:    cacode.Generate(prn),
		DataBit: 1,
	}
}

// Reset clears a channel's modulation state for reassignment to a new
// satellite, without discarding the struct itself (the scheduler reuses
// slots rather than reallocating, per P7).
func (c *Channel) Reset(prn int, builder *navmsg.Builder) {
	c.PRN = prn
	c.Active = true
	c.Code = cacode.Generate(prn)
	c.CodePhase = 0
	c.CarrierPhase = 0
	c.CodeRepeats = 0
	c.Builder = builder
	c.Frame = builder.Next()
	c.WordIdx, c.BitIdx, c.SubIdx = 0, 0, 0
	c.DataBit = bitAt(c.Frame, 0, 0, 0)
}

// SyncToRange sets a freshly allocated channel's initial code phase and
// navigation-message position (word, bit, subframe) from the satellite's
// pseudorange at acquisition time, per spec.md §4.6's reset formula:
//
//	ms = ((t_range - g0 + 6) - pseudorange/c) * 1000
//
// g0 is the run's fixed start time and tRange the simulated time the
// channel starts tracking, so ms is the time elapsed since g0 plus six
// seconds, less the signal's propagation delay. Word and subframe indices
// are taken modulo the single superframe already held in c.Frame.
func (c *Channel) SyncToRange(g0, tRange gtime.GPSTime, pseudorange float64) {
	ms := (tRange.Sub(g0) + 6 - pseudorange/gtime.CLight) * 1000

	whole := math.Floor(ms)
	c.CodePhase = (ms - whole) * 1023

	c.CodeRepeats = int(math.Mod(whole, 20))
	remWord := math.Mod(whole, 600)
	c.BitIdx = int(math.Floor(remWord / 20))

	iwordAbs := int(math.Floor(whole / 600))
	c.WordIdx = iwordAbs % navmsg.WordCount
	c.SubIdx = (iwordAbs / navmsg.WordCount) % navmsg.SubframeCount

	c.DataBit = bitAt(c.Frame, c.SubIdx, c.WordIdx, c.BitIdx)
}

// bitAt extracts navigation data bit `bit` (0-indexed, MSB first) of word
// `word` of subframe `sub`, as a ±1 value (spec.md §4.5's BPSK mapping:
// 0 -> +1, 1 -> -1).
func bitAt(f navmsg.Frame, sub, word, bit int) int8 {
	w := f[sub][word]
	shift := uint(29 - bit)
	if (w>>shift)&1 == 0 {
		return 1
	}
	return -1
}

// AdvanceDataBit moves the channel to the next navigation bit, rolling
// over words, subframes, and — via the Builder — whole superframes, and
// returns the new bit value.
func (c *Channel) AdvanceDataBit() int8 {
	c.BitIdx++
	if c.BitIdx >= 30 {
		c.BitIdx = 0
		c.WordIdx++
		if c.WordIdx >= navmsg.WordCount {
			c.WordIdx = 0
			c.SubIdx++
			if c.SubIdx >= navmsg.SubframeCount {
				c.SubIdx = 0
				c.Frame = c.Builder.Next()
			}
		}
	}
	c.DataBit = bitAt(c.Frame, c.SubIdx, c.WordIdx, c.BitIdx)
	return c.DataBit
}
