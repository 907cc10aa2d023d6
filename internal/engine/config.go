package engine

import (
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/modulator"
	"github.com/Mictronics/pluto-gps-sim/internal/sdr"
	"github.com/Mictronics/pluto-gps-sim/internal/tables"
	"github.com/Mictronics/pluto-gps-sim/internal/trajectory"
	"github.com/sirupsen/logrus"
)

// Config drives one simulation run. It is built by cmd/gpssim from CLI
// flags the way the teacher's app/rnx2rtkp.go builds a PrcOpt/SolOpt pair
// from its flag set before calling into the library (spec.md §9).
type Config struct {
	EphemPath string
	RinexV3   bool

	// StaticPos is used when Trajectory is nil.
	StaticPos gtime.Geodetic
	Trajectory trajectory.Iterator

	DurationSec      float64
	SampleRate       float64
	ElevationMaskDeg float64
	IonoEnable       bool

	// HasAnchor and AnchorTime give the simulation an explicit start time
	// instead of defaulting to the ephemeris file's own earliest TOC
	// (spec.md §4.8). With OverwriteTOC set, the anchor is aligned to a
	// 2-hour boundary and every record's TOC/TOE (and the UTC parameters'
	// WNt/tot) are shifted to match; without it, an anchor outside the
	// ephemeris file's [earliest, latest] TOC range is a fatal error.
	HasAnchor  bool
	AnchorTime gtime.GPSTime

	// OverwriteTOC shifts the parsed ephemeris's reference times to start
	// at the anchor instead of the broadcast file's original epoch
	// (spec.md §4.8's "overwrite" start-time mode). It has no effect when
	// HasAnchor is false: the run then starts at the file's earliest TOC.
	OverwriteTOC bool

	DAC       tables.DACProfile
	NewPhase  func() modulator.PhaseMode
	Sink      sdr.Sink
	Log       *logrus.Logger
}
