package navmsg

import (
	"math"

	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
)

// RawWords holds the five subframes' ten words each, pre-parity: bits
// 29..6 (after the <<6 convention) carry preamble/data/HOW-reserved
// fields; bits 5..0 are zero until ComputeChecksum fills them in at
// transmission time, when the TOW count and inter-word D29*/D30* carry
// are known.
type RawWords [SubframeCount][WordCount]uint32

// EphToSubframes packs one satellite's ephemeris, plus the shared iono/UTC
// block, into the five GPS subframes it broadcasts on a 30-second cycle
// (spec.md §4.4). Word 1 (TLM) is packed here in full; word 2 (HOW, with
// the TOW count) holds only the subframe ID — Builder builds the real HOW
// per-transmission, since the TOW advances every six seconds while the
// rest of a subframe's content is static for the whole superframe.
func EphToSubframes(e *ephem.Record, iu *ephem.IonoUTC) RawWords {
	var sbf RawWords

	wn := uint32(e.TOC.Week & 0x3FF)
	toe := uint32(scaledRound(e.TOE.Sec, 16))
	toc := uint32(scaledRound(e.TOC.Sec, 16))
	iode := uint32(e.IODE & 0xFF)
	iodc := uint32(e.IODC & 0x3FF)

	deltan := int32(scaledRound(e.Deln/math.Pi, pow2M43))
	cuc := int32(scaledRound(e.Cuc, pow2M29))
	cus := int32(scaledRound(e.Cus, pow2M29))
	cic := int32(scaledRound(e.Cic, pow2M29))
	cis := int32(scaledRound(e.Cis, pow2M29))
	crc := int32(scaledRound(e.Crc, pow2M5))
	crs := int32(scaledRound(e.Crs, pow2M5))
	ecc := uint32(scaledRound(e.E, pow2M33))
	sqrta := uint32(scaledRound(e.SqrtA, pow2M19))
	m0 := int32(scaledRound(e.M0/math.Pi, pow2M31))
	omg0 := int32(scaledRound(e.Omega0/math.Pi, pow2M31))
	inc0 := int32(scaledRound(e.I0/math.Pi, pow2M31))
	aop := int32(scaledRound(e.Omega/math.Pi, pow2M31))
	omgdot := int32(scaledRound(e.OmegaDot/math.Pi, pow2M43))
	idot := int32(scaledRound(e.IDot/math.Pi, pow2M43))
	af0 := int32(scaledRound(e.Af0, pow2M31))
	af1 := int32(scaledRound(e.Af1, pow2M43))
	af2 := int32(scaledRound(e.Af2, pow2M55))
	tgd := int32(scaledRound(e.TGD, pow2M31))

	u32 := func(v int32) uint32 { return uint32(v) }

	// Word 1 (TLM) is fixed; word 2 (HOW) is rebuilt per-transmission by
	// Builder once the TOW count is known, so here we only stash
	// the subframe ID (1..5) as a plain small integer, not yet packed
	// into the HOW bitfield.

	// Subframe 1. The transmitted week number is left at 0 rather than
	// the ephemeris's actual (possibly rolled-over) week — a preserved
	// quirk of the reference this engine is modeled on. TODO: thread the
	// real 10-bit week through once a receiver under test needs it.
	const sbf1WN = uint32(0)
	sbf[0][0] = 0x8B0000 << 6
	sbf[0][1] = 1
	sbf[0][2] = (sbf1WN&0x3FF)<<20 | uint32(e.CodeL2&0x3)<<18 | 0<<14 | uint32(e.SVHealth&0x3F)<<8 | ((iodc>>8)&0x3)<<6
	sbf[0][6] = u32(tgd)&0xFF<<6
	sbf[0][7] = (iodc&0xFF)<<22 | (toc&0xFFFF)<<6
	sbf[0][8] = u32(af2)&0xFF<<22 | u32(af1)&0xFFFF<<6
	sbf[0][9] = u32(af0)&0x3FFFFF << 8

	// Subframe 2.
	sbf[1][0] = 0x8B0000 << 6
	sbf[1][1] = 2
	sbf[1][2] = (iode&0xFF)<<22 | u32(crs)&0xFFFF<<6
	sbf[1][3] = u32(deltan)&0xFFFF<<14 | (u32(m0)>>24)&0xFF<<6
	sbf[1][4] = u32(m0) & 0xFFFFFF << 6
	sbf[1][5] = u32(cuc)&0xFFFF<<14 | (ecc>>24)&0xFF<<6
	sbf[1][6] = ecc & 0xFFFFFF << 6
	sbf[1][7] = u32(cus)&0xFFFF<<14 | (sqrta>>24)&0xFF<<6
	sbf[1][8] = sqrta & 0xFFFFFF << 6
	sbf[1][9] = (toe & 0xFFFF) << 14

	// Subframe 3.
	sbf[2][0] = 0x8B0000 << 6
	sbf[2][1] = 3
	sbf[2][2] = u32(cic)&0xFFFF<<14 | (u32(omg0)>>24)&0xFF<<6
	sbf[2][3] = u32(omg0) & 0xFFFFFF << 6
	sbf[2][4] = u32(cis)&0xFFFF<<14 | (u32(inc0)>>24)&0xFF<<6
	sbf[2][5] = u32(inc0) & 0xFFFFFF << 6
	sbf[2][6] = u32(crc)&0xFFFF<<14 | (u32(aop)>>24)&0xFF<<6
	sbf[2][7] = u32(aop) & 0xFFFFFF << 6
	sbf[2][8] = u32(omgdot) & 0xFFFFFF << 6
	sbf[2][9] = (iode&0xFF)<<22 | u32(idot)&0x3FFF<<8

	// Subframe 4: page 18, iono/UTC. Broadcast only when iono is enabled
	// and a complete block was parsed (spec.md §4.3's validity rule).
	const dataID = uint32(1)
	const sbf4Page18SVID = uint32(56)
	const sbf4Page25SVID = uint32(63)
	sbf[3][0] = 0x8B0000 << 6
	sbf[3][1] = 4
	if iu != nil && iu.Enable && iu.Valid {
		a0 := int32(scaledRound(iu.Alpha[0], pow2M30()))
		a1 := int32(scaledRound(iu.Alpha[1], pow2M27()))
		a2 := int32(scaledRound(iu.Alpha[2], pow2M24()))
		a3 := int32(scaledRound(iu.Alpha[3], pow2M24()))
		b0 := int32(scaledRound(iu.Beta[0], 2048))
		b1 := int32(scaledRound(iu.Beta[1], 16384))
		b2 := int32(scaledRound(iu.Beta[2], 65536))
		b3 := int32(scaledRound(iu.Beta[3], 65536))
		utcA0 := int32(scaledRound(iu.A0, pow2M30()))
		utcA1 := int32(scaledRound(iu.A1, pow2M50))
		tot := uint32(iu.Tot) / 4096
		wnt := uint32(iu.WNt) & 0xFF
		dtls := int32(iu.DeltaTls)
		wnlsf := uint32(iu.WNlsf) & 0xFF
		dn := uint32(iu.DN) & 0xFF
		dtlsf := int32(iu.DeltaTlsf)

		sbf[3][2] = dataID<<28 | sbf4Page18SVID<<22 | u32(a0)&0xFF<<14 | u32(a1)&0xFF<<6
		sbf[3][3] = u32(a2)&0xFF<<22 | u32(a3)&0xFF<<14 | u32(b0)&0xFF<<6
		sbf[3][4] = u32(b1)&0xFF<<22 | u32(b2)&0xFF<<14 | u32(b3)&0xFF<<6
		sbf[3][5] = u32(utcA1) & 0xFFFFFF << 6
		sbf[3][6] = (u32(utcA0)>>8)&0xFFFFFF<<6
		sbf[3][7] = u32(utcA0)&0xFF<<22 | tot&0xFF<<14 | wnt<<6
		sbf[3][8] = u32(dtls)&0xFF<<22 | wnlsf<<14 | dn<<6
		sbf[3][9] = u32(dtlsf) & 0xFF << 22
	} else {
		sbf[3][2] = dataID<<28 | sbf4Page25SVID<<22
	}

	// Subframe 5: page 25, almanac reference week/toa only (this engine
	// does not transmit a full almanac — spec.md's Non-goals exclude it).
	const sbf5Page25SVID = uint32(51)
	wna := wn & 0xFF
	toa := toe / 256
	sbf[4][0] = 0x8B0000 << 6
	sbf[4][1] = 5
	sbf[4][2] = dataID<<28 | sbf5Page25SVID<<22 | toa&0xFF<<14 | wna<<6

	return sbf
}

// The three least-negative alpha/A0 scale exponents recur across subframe
// 4 fields; named helpers keep the call sites above readable without a
// giant constant block duplicating scale.go's pattern for rarely-reused
// exponents.
func pow2M30() float64 { return 1.0 / 1073741824 }
func pow2M27() float64 { return 1.0 / 134217728 }
func pow2M24() float64 { return 1.0 / 16777216 }
