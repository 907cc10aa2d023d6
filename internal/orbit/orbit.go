// Package orbit computes satellite position/velocity/clock state from
// broadcast ephemeris, the resulting pseudorange/pseudorange-rate observed
// from a receiver, the Klobuchar ionospheric delay, and visibility.
package orbit

import (
	"math"

	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
)

// relClockFactor is the relativistic clock correction coefficient,
// -4.442807633e-10 s/sqrt(m) (spec.md §4.3 step 4).
const relClockFactor = -4.442807633e-10

// State is a satellite's ECEF position/velocity and clock bias/rate at a
// given time, from SatPos.
type State struct {
	Pos       gtime.ECEF
	Vel       gtime.ECEF
	ClockBias float64
	ClockRate float64
}

// SatPos propagates a Keplerian ephemeris to time t per spec.md §4.3.
func SatPos(eph *ephem.Record, t gtime.GPSTime) State {
	tk := gtime.WrapHalfWeek(t.Sub(eph.TOE))

	mk := eph.M0 + eph.N*tk
	ek := mk
	for i := 0; i < 30; i++ {
		dE := (mk - ek + eph.E*math.Sin(ek)) / (1 - eph.E*math.Cos(ek))
		ek += dE
		if math.Abs(dE) < 1e-14 {
			break
		}
	}
	sinE, cosE := math.Sin(ek), math.Cos(ek)

	vk := math.Atan2(eph.SqrtOneMinusE2*sinE, cosE-eph.E)
	phik := vk + eph.Omega

	sin2p, cos2p := math.Sin(2*phik), math.Cos(2*phik)
	duk := eph.Cus*sin2p + eph.Cuc*cos2p
	drk := eph.Crs*sin2p + eph.Crc*cos2p
	dik := eph.Cis*sin2p + eph.Cic*cos2p

	uk := phik + duk
	rk := eph.A*(1-eph.E*cosE) + drk
	ik := eph.I0 + dik + eph.IDot*tk

	xp := rk * math.Cos(uk)
	yp := rk * math.Sin(uk)

	omegaK := eph.Omega0 + tk*eph.OmegaDotMinusOmegaE - gtime.OmegaE*eph.TOE.Sec
	sinOmk, cosOmk := math.Sin(omegaK), math.Cos(omegaK)
	sinIk, cosIk := math.Sin(ik), math.Cos(ik)

	pos := gtime.ECEF{
		X: xp*cosOmk - yp*cosIk*sinOmk,
		Y: xp*sinOmk + yp*cosIk*cosOmk,
		Z: yp * sinIk,
	}

	// Derivatives, for velocity.
	ekDot := eph.N / (1 - eph.E*cosE)
	vkDot := ekDot * eph.SqrtOneMinusE2 / (1 - eph.E*cosE)
	ukDot := vkDot + 2*(eph.Cus*cos2p-eph.Cuc*sin2p)*vkDot
	rkDot := eph.A*eph.E*sinE*ekDot + 2*(eph.Crs*cos2p-eph.Crc*sin2p)*vkDot
	ikDot := eph.IDot + 2*(eph.Cis*cos2p-eph.Cic*sin2p)*vkDot
	omegaKDot := eph.OmegaDotMinusOmegaE

	xpDot := rkDot*math.Cos(uk) - rk*ukDot*math.Sin(uk)
	ypDot := rkDot*math.Sin(uk) + rk*ukDot*math.Cos(uk)

	vel := gtime.ECEF{
		X: xpDot*cosOmk - ypDot*cosIk*sinOmk + yp*sinIk*sinOmk*ikDot - pos.Y*omegaKDot,
		Y: xpDot*sinOmk + ypDot*cosIk*cosOmk - yp*sinIk*cosOmk*ikDot + pos.X*omegaKDot,
		Z: ypDot*sinIk + yp*cosIk*ikDot,
	}

	dtRel := relClockFactor * eph.E * eph.SqrtA * sinE
	clockBias := eph.Af0 + tk*(eph.Af1+tk*eph.Af2) + dtRel - eph.TGD
	clockRate := eph.Af1 + 2*tk*eph.Af2

	return State{Pos: pos, Vel: vel, ClockBias: clockBias, ClockRate: clockRate}
}

// Range is the set of observables a receiver derives from one satellite at
// one instant, per spec.md §3/§4.3.
type Range struct {
	Time             gtime.GPSTime
	Pseudorange      float64
	PseudorangeRate  float64
	GeometricRange   float64
	Az, El           float64
	IonoDelay        float64
}

// ComputeRange implements spec.md §4.3's light-time / Earth-rotation /
// ionosphere / az-el pipeline.
func ComputeRange(rxPos gtime.ECEF, rxGeo gtime.Geodetic, e *ephem.Record, t gtime.GPSTime, iu *ephem.IonoUTC) Range {
	st := SatPos(e, t)

	tau := st.Pos.Sub(rxPos).Norm() / gtime.CLight
	satPos := st.Pos.Sub(st.Vel.Scale(tau))

	// Earth-rotation correction during signal transit.
	corrected := gtime.ECEF{
		X: satPos.X + satPos.Y*gtime.OmegaE*tau,
		Y: satPos.Y - satPos.X*gtime.OmegaE*tau,
		Z: satPos.Z,
	}

	los := corrected.Sub(rxPos)
	d := los.Norm()

	basis := gtime.LocalTangentMatrix(rxGeo.Lat, rxGeo.Lon)
	n, eComp, u := gtime.EcefToEnu(los, basis)
	az, el := gtime.EnuToAzEl(n, eComp, u)

	iono := IonosphericDelay(iu, t, az, el, rxGeo)

	pseudorange := d - gtime.CLight*st.ClockBias + iono

	unit := los.Scale(1 / d)
	pseudorangeRate := st.Vel.Dot(unit)

	return Range{
		Time: t, Pseudorange: pseudorange, PseudorangeRate: pseudorangeRate,
		GeometricRange: d, Az: az, El: el, IonoDelay: iono,
	}
}

// CheckVisibility reports whether a satellite is visible above the
// elevation mask (spec.md §4.3 "visibility"), given an already-valid
// ephemeris record and its computed elevation.
func CheckVisibility(valid bool, elevation, maskRad float64) bool {
	return valid && elevation > maskRad
}
