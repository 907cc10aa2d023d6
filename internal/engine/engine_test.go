package engine_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Mictronics/pluto-gps-sim/internal/engine"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/modulator"
	"github.com/Mictronics/pluto-gps-sim/internal/sdr"
	"github.com/Mictronics/pluto-gps-sim/internal/tables"
	"github.com/stretchr/testify/require"
)

// writeFixtureNav writes a minimal single-satellite RINEX v2 navigation
// file and returns its path.
func writeFixtureNav(t *testing.T) string {
	t.Helper()

	header := fmt.Sprintf("%-60s%-20s\n", "", "END OF HEADER")

	line1 := fmt.Sprintf("%2d %02d%3d%3d%3d%3d%2d   %19s%19s%19s\n",
		1, 24, 1, 1, 0, 0, 0, "0.0", "0.0", "0.0")
	row := func(a, b, c, d string) string {
		return fmt.Sprintf("   %19s%19s%19s%19s\n", a, b, c, d)
	}
	block := line1 +
		row("1", "0.0", "0.0", "0.5") + // IODE, Crs, Deltan, M0
		row("0.0", "0.01", "0.0", "5153.6") + // Cuc, E, Cus, SqrtA
		row("0.0", "0.0", "0.0", "0.0") + // Toe, Cic, Omega0, Cis
		row("0.95", "0.0", "0.3", "0.0") + // I0, Crc, Omega, OmegaDot
		row("0.0", "0.0", "2300", "0.0") + // IDot, CodeL2, week, L2P flag
		row("0.0", "0.0", "0.0", "1") + // URA, SVHealth, TGD, IODC
		row("", "", "", "") // reserved

	f, err := os.CreateTemp(t.TempDir(), "nav-*.rnx")
	require.NoError(t, err)
	_, err = f.WriteString(header + block)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestEngineRunsShortCapture(t *testing.T) {
	path := writeFixtureNav(t)

	cfg := engine.Config{
		EphemPath:        path,
		RinexV3:          false,
		StaticPos:        gtime.Geodetic{Lat: 0, Lon: 0, Height: 0},
		DurationSec:      0.2,
		SampleRate:       1000,
		ElevationMaskDeg: -90,
		IonoEnable:       false,
		DAC:              tables.DAC16,
		NewPhase:         func() modulator.PhaseMode { return &modulator.FloatPhase{} },
		Sink:             sdr.NullSink{},
	}

	e, err := engine.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = e.Run(ctx)
	require.NoError(t, err)
}

func baseConfig(path string) engine.Config {
	return engine.Config{
		EphemPath:        path,
		RinexV3:          false,
		StaticPos:        gtime.Geodetic{Lat: 0, Lon: 0, Height: 0},
		DurationSec:      0.1,
		SampleRate:       1000,
		ElevationMaskDeg: -90,
		IonoEnable:       false,
		DAC:              tables.DAC16,
		NewPhase:         func() modulator.PhaseMode { return &modulator.FloatPhase{} },
		Sink:             sdr.NullSink{},
	}
}

func TestEngineRejectsAnchorOutsideEphemerisWindow(t *testing.T) {
	path := writeFixtureNav(t)
	cfg := baseConfig(path)
	cfg.HasAnchor = true
	cfg.AnchorTime = gtime.DateToGPS(gtime.Calendar{Year: 2030, Month: 1, Day: 1})

	_, err := engine.New(cfg)
	require.Error(t, err, "an anchor far outside the file's TOC window must be rejected")
}

func TestEngineOverwriteShiftsEphemerisToAnchor(t *testing.T) {
	path := writeFixtureNav(t)
	cfg := baseConfig(path)
	cfg.HasAnchor = true
	cfg.OverwriteTOC = true
	cfg.AnchorTime = gtime.DateToGPS(gtime.Calendar{Year: 2030, Month: 1, Day: 1})

	e, err := engine.New(cfg)
	require.NoError(t, err, "overwrite mode must accept any anchor by shifting the ephemeris to match")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
}
