// Package gtime implements the calendar/GPS-time and ECEF/geodetic
// utilities shared by every other package in this module.
package gtime

import (
	"math"
	"time"
)

// Physical and GPS-ICD constants shared project-wide.
const (
	CLight    = 2.99792458e8    // speed of light, m/s
	Mu        = 3.986005e14     // earth gravitational constant, m^3/s^2
	OmegaE    = 7.2921151467e-5 // earth angular velocity, rad/s
	LambdaL1  = 0.190293672798365
	CodeFreq  = 1.023e6   // C/A chip rate, chips/s
	CarrFreq  = 1.57542e9 // L1 carrier, Hz
	CarrToCode = 1540     // f_carr / f_code

	secondsPerWeek = 604800.0
	halfWeek       = secondsPerWeek / 2.0

	wgs84A = 6378137.0
	wgs84E = 0.0818191908426
)

// GPSTime is an immutable (week, seconds-of-week) GPS time value.
type GPSTime struct {
	Week int
	Sec  float64
}

// Calendar is an immutable Gregorian calendar timestamp.
type Calendar struct {
	Year, Month, Day, Hour, Min int
	Sec                         float64
}

// Add returns t shifted by dt seconds, carrying week rollover.
func (t GPSTime) Add(dt float64) GPSTime {
	sec := t.Sec + dt
	week := t.Week
	for sec >= secondsPerWeek {
		sec -= secondsPerWeek
		week++
	}
	for sec < 0 {
		sec += secondsPerWeek
		week--
	}
	return GPSTime{Week: week, Sec: sec}
}

// Sub returns t1 - t2 in seconds, accounting for week difference.
func (t1 GPSTime) Sub(t2 GPSTime) float64 {
	return float64(t1.Week-t2.Week)*secondsPerWeek + (t1.Sec - t2.Sec)
}

// FloorToSeconds rounds t down to the nearest multiple of step
// seconds-of-week, used to align an anchor time to a fixed boundary
// (spec.md §4.8's "align the anchor to a 2-hour boundary").
func (t GPSTime) FloorToSeconds(step float64) GPSTime {
	return GPSTime{Week: t.Week, Sec: math.Floor(t.Sec/step) * step}
}

// WrapHalfWeek wraps dt (typically t - toe) into (-halfWeek, halfWeek].
func WrapHalfWeek(dt float64) float64 {
	switch {
	case dt > halfWeek:
		return dt - secondsPerWeek
	case dt <= -halfWeek:
		return dt + secondsPerWeek
	default:
		return dt
	}
}

// gpsEpoch is the GPS time origin, 1980-01-06 00:00:00 UTC. Using
// time.Time to measure day offsets from it gives an exact Gregorian
// calendar round trip (leap years, month lengths) instead of hand-rolling
// the "(Y-1980)/4 + 1, minus one in a leap year's Jan/Feb" rule spec.md
// describes — the two are mathematically equivalent, but time.Time can't
// go subtly wrong at a century boundary.
var gpsEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

// DateToGPS converts a calendar date to GPS week/seconds-of-week, using the
// 1980-01-06 epoch described in spec.md's §4.1.
func DateToGPS(c Calendar) GPSTime {
	wholeSec := math.Floor(c.Sec)
	frac := c.Sec - wholeSec
	t := time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Min, int(wholeSec), 0, time.UTC)
	totalSec := t.Sub(gpsEpoch).Seconds() + frac
	week := int(math.Floor(totalSec / secondsPerWeek))
	sec := totalSec - float64(week)*secondsPerWeek
	return GPSTime{Week: week, Sec: sec}
}

// GPSToDate is the inverse of DateToGPS.
func GPSToDate(gt GPSTime) Calendar {
	totalSec := float64(gt.Week)*secondsPerWeek + gt.Sec
	whole := math.Floor(totalSec)
	frac := totalSec - whole
	t := gpsEpoch.Add(time.Duration(whole) * time.Second)
	return Calendar{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Min: t.Minute(), Sec: float64(t.Second()) + frac,
	}
}

// ECEF is a Cartesian Earth-Centered Earth-Fixed position or vector, metres.
type ECEF struct {
	X, Y, Z float64
}

func (a ECEF) Sub(b ECEF) ECEF { return ECEF{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a ECEF) Add(b ECEF) ECEF { return ECEF{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a ECEF) Scale(s float64) ECEF {
	return ECEF{a.X * s, a.Y * s, a.Z * s}
}
func (a ECEF) Norm() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}
func (a ECEF) Dot(b ECEF) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Geodetic is a WGS-84 geodetic position: latitude/longitude in radians,
// height in metres.
type Geodetic struct {
	Lat, Lon, Height float64
}

// EcefToGeodetic converts an ECEF position to geodetic lat/lon/height using
// the iterative WGS-84 method from spec.md §4.1. Degenerate input (near the
// Earth's center) bails out with h = -a, lat = lon = 0.
func EcefToGeodetic(r ECEF) Geodetic {
	if r.Norm() < 1e-3 {
		return Geodetic{Lat: 0, Lon: 0, Height: -wgs84A}
	}
	e2 := wgs84E * wgs84E
	p := math.Hypot(r.X, r.Y)
	lon := math.Atan2(r.Y, r.X)

	lat := math.Atan2(r.Z, p*(1-e2))
	h := 0.0
	for i := 0; i < 50; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-e2*sinLat*sinLat)
		newH := p/math.Cos(lat) - n
		newLat := math.Atan2(r.Z, p*(1-e2*n/(n+newH)))
		dh := math.Abs(newH - h)
		h = newH
		lat = newLat
		if dh < 1e-3 {
			break
		}
	}
	return Geodetic{Lat: lat, Lon: lon, Height: h}
}

// GeodeticToEcef is the closed-form inverse of EcefToGeodetic.
func GeodeticToEcef(g Geodetic) ECEF {
	e2 := wgs84E * wgs84E
	sinLat := math.Sin(g.Lat)
	n := wgs84A / math.Sqrt(1-e2*sinLat*sinLat)
	return ECEF{
		X: (n + g.Height) * math.Cos(g.Lat) * math.Cos(g.Lon),
		Y: (n + g.Height) * math.Cos(g.Lat) * math.Sin(g.Lon),
		Z: (n*(1-e2) + g.Height) * sinLat,
	}
}

// ENUBasis is the 3x3 local tangent-plane rotation for a given latitude and
// longitude; rows are the East, North, Up unit vectors in ECEF.
type ENUBasis struct {
	East, North, Up ECEF
}

// LocalTangentMatrix builds the ENU basis at the given geodetic lat/lon.
func LocalTangentMatrix(lat, lon float64) ENUBasis {
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)
	return ENUBasis{
		East:  ECEF{-sinLon, cosLon, 0},
		North: ECEF{-sinLat * cosLon, -sinLat * sinLon, cosLat},
		Up:    ECEF{cosLat * cosLon, cosLat * sinLon, sinLat},
	}
}

// EcefToEnu projects an ECEF delta vector into the given local ENU basis.
func EcefToEnu(delta ECEF, basis ENUBasis) (n, e, u float64) {
	return delta.Dot(basis.North), delta.Dot(basis.East), delta.Dot(basis.Up)
}

// EnuToAzEl converts an ENU vector to azimuth in [0, 2pi) and elevation in
// [-pi/2, pi/2].
func EnuToAzEl(n, e, u float64) (az, el float64) {
	az = math.Atan2(e, n)
	if az < 0 {
		az += 2 * math.Pi
	}
	horiz := math.Hypot(n, e)
	el = math.Atan2(u, horiz)
	return az, el
}
