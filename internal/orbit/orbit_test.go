package orbit_test

import (
	"math"
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/orbit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEph() *ephem.Record {
	r := &ephem.Record{
		Valid: true, PRN: 5,
		TOE:    gtime.GPSTime{Week: 1800, Sec: 345600},
		TOC:    gtime.GPSTime{Week: 1800, Sec: 345600},
		SqrtA:  5153.6,
		E:      0.01,
		M0:     0.5,
		Omega0: 1.2,
		I0:     0.95,
		Omega:  0.3,
		Deln:   4.3e-9,
	}
	r2 := *r
	r2normalize(&r2)
	return &r2
}

// r2normalize mirrors the unexported ephem.Record.normalize for test setup.
func r2normalize(r *ephem.Record) {
	r.SqrtOneMinusE2 = math.Sqrt(1 - r.E*r.E)
	a := r.SqrtA * r.SqrtA
	r.N = math.Sqrt(gtime.Mu/(a*a*a)) + r.Deln
	r.OmegaDotMinusOmegaE = r.OmegaDot - gtime.OmegaE
}

func TestSatPosReasonable(t *testing.T) {
	e := sampleEph()
	st := orbit.SatPos(e, gtime.GPSTime{Week: 1800, Sec: 345600 + 600})
	r := st.Pos.Norm()
	assert.Greater(t, r, 2.5e7)
	assert.Less(t, r, 2.75e7)
}

func TestVisibilitySubSatellitePoint(t *testing.T) {
	e := sampleEph()
	st := orbit.SatPos(e, e.TOE)
	geo := gtime.EcefToGeodetic(st.Pos)
	geo.Height = 0 // on the ground directly below the satellite
	rxEcef := gtime.GeodeticToEcef(geo)

	rng := orbit.ComputeRange(rxEcef, geo, e, e.TOE, &ephem.IonoUTC{})
	assert.Greater(t, rng.El, math.Pi/2-0.05)
	assert.True(t, orbit.CheckVisibility(e.Valid, rng.El, 0))
}

func TestVisibilityAntipode(t *testing.T) {
	e := sampleEph()
	st := orbit.SatPos(e, e.TOE)
	geo := gtime.EcefToGeodetic(st.Pos)
	antipode := gtime.Geodetic{Lat: -geo.Lat, Lon: geo.Lon + math.Pi, Height: 0}
	rxEcef := gtime.GeodeticToEcef(antipode)

	rng := orbit.ComputeRange(rxEcef, antipode, e, e.TOE, &ephem.IonoUTC{})
	assert.False(t, orbit.CheckVisibility(e.Valid, rng.El, 0))
}

func TestIonoDisabledIsZero(t *testing.T) {
	iu := &ephem.IonoUTC{Enable: false}
	d := orbit.IonosphericDelay(iu, gtime.GPSTime{}, 0.5, 0.3, gtime.Geodetic{})
	require.Equal(t, 0.0, d)
}

func TestIonoFallbackWhenInvalid(t *testing.T) {
	iu := &ephem.IonoUTC{Enable: true, Valid: false}
	d := orbit.IonosphericDelay(iu, gtime.GPSTime{}, 0, math.Pi/2, gtime.Geodetic{})
	obliquity := 1 + 16*math.Pow(0.53-0.5, 3) // zenith: elevation 0.5 semicircles
	assert.InDelta(t, obliquity*5e-9*gtime.CLight, d, 1e-6)
}
