package orbit

import (
	"math"

	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
)

// IonosphericDelay implements spec.md §4.3's Klobuchar model, with the
// disabled/fallback paths it specifies. It is the transmitter-side analog
// of the teacher's receiver-side IonModel (FengXuebin-gnssgo/src/common.go)
// — same closed form, but here the delay is injected into the simulated
// pseudorange rather than subtracted from an observed one.
func IonosphericDelay(iu *ephem.IonoUTC, t gtime.GPSTime, az, el float64, rxGeo gtime.Geodetic) float64 {
	if iu == nil || !iu.Enable {
		return 0
	}
	if !iu.Valid {
		eSemi := el / math.Pi
		f := 1 + 16*math.Pow(0.53-eSemi, 3)
		return f * 5e-9 * gtime.CLight
	}

	eSemi := el / math.Pi // elevation, semicircles
	latSemi := rxGeo.Lat / math.Pi
	lonSemi := rxGeo.Lon / math.Pi

	f := 1 + 16*math.Pow(0.53-eSemi, 3)

	psi := 0.0137/(eSemi+0.11) - 0.022
	phiI := latSemi + psi*math.Cos(az)
	if phiI > 0.416 {
		phiI = 0.416
	} else if phiI < -0.416 {
		phiI = -0.416
	}
	lambdaI := lonSemi + psi*math.Sin(az)/math.Cos(phiI*math.Pi)
	phiM := phiI + 0.064*math.Cos((lambdaI-1.617)*math.Pi)

	tLocal := 4.32e4*lambdaI + secOfWeek(t)
	tLocal = math.Mod(tLocal, 86400)
	if tLocal < 0 {
		tLocal += 86400
	}

	amp := iu.Alpha[0] + phiM*(iu.Alpha[1]+phiM*(iu.Alpha[2]+phiM*iu.Alpha[3]))
	if amp < 0 {
		amp = 0
	}
	per := iu.Beta[0] + phiM*(iu.Beta[1]+phiM*(iu.Beta[2]+phiM*iu.Beta[3]))
	if per < 72000 {
		per = 72000
	}

	x := 2 * math.Pi * (tLocal - 50400) / per

	var delay float64
	if math.Abs(x) < 1.57 {
		delay = f * (5e-9 + amp*(1-x*x/2+x*x*x*x/24)) * gtime.CLight
	} else {
		delay = f * 5e-9 * gtime.CLight
	}
	return delay
}

func secOfWeek(t gtime.GPSTime) float64 { return t.Sec }
