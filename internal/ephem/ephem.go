// Package ephem parses broadcast GPS navigation messages from the RINEX v2
// and v3 text grammars into normalized ephemeris records and an optional
// ionospheric/UTC parameter block.
package ephem

import (
	"math"

	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
)

// MaxSVs is the number of GPS PRNs tracked per set (index 0 unused, 1..32
// used; spec.md's data model keys ephem by satellite index 0..31 in the
// alloc table, so callers translate PRN-1 <-> index as needed).
const MaxSVs = 32

// MaxSets is the maximum number of hourly ephemeris sets retained.
const MaxSets = 13

// Record is one satellite's broadcast ephemeris, normalized per spec.md §3.
type Record struct {
	Valid bool
	PRN   int

	TOC, TOE gtime.GPSTime
	IODC     int
	IODE     int

	// Keplerian / harmonic coefficients.
	Deln, Cuc, Cus, Cic, Cis, Crc, Crs float64
	E, SqrtA, M0, Omega0, I0, Omega   float64
	OmegaDot, IDot                    float64
	Af0, Af1, Af2                     float64
	TGD                               float64

	SVHealth int
	CodeL2   int

	// Cached derivatives, computed once at decode time (spec.md §4.2
	// "post-decode normalization").
	A                    float64 // semi-major axis = sqrtA^2
	N                    float64 // corrected mean motion
	SqrtOneMinusE2       float64
	OmegaDotMinusOmegaE  float64
}

// normalize fills the cached derivative fields and folds SV health per
// spec.md's "if SV health is in (0, 32), OR in 32 (set MSB)" rule.
func (r *Record) normalize() {
	r.A = r.SqrtA * r.SqrtA
	n0 := math.Sqrt(gtime.Mu / (r.A * r.A * r.A))
	r.N = n0 + r.Deln
	r.SqrtOneMinusE2 = math.Sqrt(1 - r.E*r.E)
	r.OmegaDotMinusOmegaE = r.OmegaDot - gtime.OmegaE
	if r.SVHealth > 0 && r.SVHealth < 32 {
		r.SVHealth |= 32
	}
}

// IonoUTC carries the Klobuchar ionospheric coefficients and the UTC/leap
// second parameters. Validity requires all four RINEX header records to
// have been observed (spec.md §3).
type IonoUTC struct {
	Alpha [4]float64
	Beta  [4]float64

	A0, A1    float64
	Tot       float64
	WNt       int
	DeltaTls  int
	DeltaTlsf int
	DN        int
	WNlsf     int

	Enable bool // false disables iono delay entirely (-i flag)
	Valid  bool

	sawAlpha, sawBeta, sawUTC, sawLeap bool
}

func (iu *IonoUTC) recomputeValidity() {
	iu.Valid = iu.sawAlpha && iu.sawBeta && iu.sawUTC && iu.sawLeap
}

// Set is one hourly bucket of up to MaxSVs ephemeris records.
type Set [MaxSVs + 1]Record // index by PRN, 1..32; index 0 unused

// EarliestTOC returns the minimum TOC among valid records in the set, and
// whether any valid record exists.
func (s *Set) EarliestTOC() (gtime.GPSTime, bool) {
	var best gtime.GPSTime
	found := false
	for i := 1; i <= MaxSVs; i++ {
		if !s[i].Valid {
			continue
		}
		t := s[i].TOC
		if !found || t.Week < best.Week || (t.Week == best.Week && t.Sec < best.Sec) {
			best = t
			found = true
		}
	}
	return best, found
}

// Table is the decoded output of a RINEX navigation file: up to MaxSets
// hourly sets plus the shared iono/UTC block.
type Table struct {
	Sets    []Set
	IonoUTC IonoUTC
}

// EarliestTOC returns the minimum TOC among valid records across every set
// in the table, and whether any valid record exists.
func (t *Table) EarliestTOC() (gtime.GPSTime, bool) {
	var best gtime.GPSTime
	found := false
	for si := range t.Sets {
		for i := 1; i <= MaxSVs; i++ {
			r := &t.Sets[si][i]
			if !r.Valid {
				continue
			}
			if !found || r.TOC.Week < best.Week || (r.TOC.Week == best.Week && r.TOC.Sec < best.Sec) {
				best = r.TOC
				found = true
			}
		}
	}
	return best, found
}

// ShiftTOC adds delta seconds to every valid record's TOC and TOE across
// every set, and to the UTC parameters' reference time (WNt, tot), so the
// broadcast UTC epoch stays consistent with the shifted ephemeris — used
// by the engine's start-time "overwrite" path (spec.md §4.8) to reuse an
// old broadcast file at an arbitrary simulated start.
func (t *Table) ShiftTOC(delta float64) {
	for si := range t.Sets {
		for i := 1; i <= MaxSVs; i++ {
			r := &t.Sets[si][i]
			if !r.Valid {
				continue
			}
			r.TOC = r.TOC.Add(delta)
			r.TOE = r.TOE.Add(delta)
		}
	}
	if t.IonoUTC.Valid {
		shifted := gtime.GPSTime{Week: t.IonoUTC.WNt, Sec: t.IonoUTC.Tot}.Add(delta)
		t.IonoUTC.WNt = shifted.Week
		t.IonoUTC.Tot = shifted.Sec
	}
}

// LatestTOC returns the maximum TOC among valid records across every set,
// and whether any valid record exists.
func (t *Table) LatestTOC() (gtime.GPSTime, bool) {
	var best gtime.GPSTime
	found := false
	for si := range t.Sets {
		for i := 1; i <= MaxSVs; i++ {
			r := &t.Sets[si][i]
			if !r.Valid {
				continue
			}
			if !found || r.TOC.Week > best.Week || (r.TOC.Week == best.Week && r.TOC.Sec > best.Sec) {
				best = r.TOC
				found = true
			}
		}
	}
	return best, found
}
