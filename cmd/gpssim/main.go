// Command gpssim synthesizes a composite GPS L1 C/A baseband I/Q stream
// from a broadcast ephemeris file, the way the teacher's app/str2str.go
// wires a flag set into a single long-running stream copy
// (FengXuebin-gnssgo/app/str2str/str2str.go), generalized here from a
// receiver-data relay to a transmitter signal synthesizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mictronics/pluto-gps-sim/internal/engine"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/modulator"
	"github.com/Mictronics/pluto-gps-sim/internal/sdr"
	"github.com/Mictronics/pluto-gps-sim/internal/station"
	"github.com/Mictronics/pluto-gps-sim/internal/tables"
	"github.com/Mictronics/pluto-gps-sim/internal/trajectory"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		navPath      = flag.String("e", "", "broadcast ephemeris file (RINEX navigation, optionally .gz)")
		rinexV3      = flag.Bool("3", false, "treat the navigation file as RINEX v3")
		stationCode  = flag.String("l", "", "named station code for the receiver position (see -stations)")
		latDeg       = flag.Float64("lat", 0, "receiver latitude, degrees (used when -l is not given)")
		lonDeg       = flag.Float64("lon", 0, "receiver longitude, degrees")
		heightM      = flag.Float64("alt", 0, "receiver height, meters")
		trajPath     = flag.String("u", "", "user trajectory CSV (time,x,y,z), overrides -l/-lat/-lon/-alt")
		duration     = flag.Float64("d", 300, "capture duration, seconds")
		sampleRate   = flag.Float64("s", 2.6e6, "output sample rate, Hz")
		elevMaskDeg  = flag.Float64("mask", 5, "elevation mask, degrees")
		ionoDisabled = flag.Bool("i", false, "disable ionospheric delay")
		anchorTime   = flag.String("t", "", "simulation start time, \"YYYY/MM/DD,hh:mm:ss\"; must fall within the ephemeris file's TOC window")
		overwriteArg = flag.String("T", "", "simulation start time, \"YYYY/MM/DD,hh:mm:ss\" or \"now\", aligned down to a 2-hour boundary; shifts the ephemeris epoch to start there")
		dacName      = flag.String("dac", "dac16", "output DAC profile: dac8, dac9, dac12, dac16")
		intPhase     = flag.Bool("int-phase", false, "use the fixed-point (25-bit) carrier NCO instead of floating point")
		outPath      = flag.String("o", "", "output file path (written as interleaved int16 I/Q); empty writes to stdout")
		serialDev    = flag.String("serial", "", "serial device to stream to instead of a file (e.g. /dev/ttyUSB0)")
		serialBaud   = flag.Int("baud", 921600, "serial baud rate")
		verbose      = flag.Bool("v", false, "verbose logging")
		listStations = flag.Bool("stations", false, "list known station codes and exit")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *listStations {
		for _, e := range station.All() {
			fmt.Println(e)
		}
		return
	}

	if *navPath == "" {
		log.Fatal("missing required -e <ephemeris file>")
	}

	dac, ok := tables.ProfileByName(*dacName)
	if !ok {
		log.Fatalf("unknown DAC profile %q", *dacName)
	}

	newPhase := func() modulator.PhaseMode { return &modulator.FloatPhase{} }
	if *intPhase {
		newPhase = func() modulator.PhaseMode { return &modulator.IntPhase{} }
	}

	geo := gtime.Geodetic{Lat: *latDeg * degToRad, Lon: *lonDeg * degToRad, Height: *heightM}
	if *stationCode != "" {
		e, ok := station.Lookup(*stationCode)
		if !ok {
			log.Fatalf("unknown station code %q", *stationCode)
		}
		geo = e.Geo
	}

	var traj trajectory.Iterator
	if *trajPath != "" {
		f, err := os.Open(*trajPath)
		if err != nil {
			log.Fatalf("opening trajectory file: %v", err)
		}
		defer f.Close()
		traj, err = trajectory.LoadCSV(f)
		if err != nil {
			log.Fatalf("loading trajectory: %v", err)
		}
	}

	var hasAnchor, overwriteTOC bool
	var anchor gtime.GPSTime
	switch {
	case *overwriteArg != "":
		var err error
		anchor, err = parseAnchorTime(*overwriteArg)
		if err != nil {
			log.Fatalf("-T: %v", err)
		}
		hasAnchor, overwriteTOC = true, true
	case *anchorTime != "":
		var err error
		anchor, err = parseAnchorTime(*anchorTime)
		if err != nil {
			log.Fatalf("-t: %v", err)
		}
		hasAnchor = true
	}

	sink, closeSink := buildSink(*outPath, *serialDev, *serialBaud, log)
	defer closeSink()

	cfg := engine.Config{
		EphemPath:        *navPath,
		RinexV3:          *rinexV3,
		StaticPos:        geo,
		Trajectory:       traj,
		DurationSec:      *duration,
		SampleRate:       *sampleRate,
		ElevationMaskDeg: *elevMaskDeg,
		IonoEnable:       !*ionoDisabled,
		HasAnchor:        hasAnchor,
		AnchorTime:       anchor,
		OverwriteTOC:     overwriteTOC,
		DAC:              dac,
		NewPhase:         newPhase,
		Sink:             sink,
		Log:              log,
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("starting engine: %v", err)
	}
	log.WithField("run_id", eng.RunID).Info("starting capture")

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		cancel()
	}()

	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("capture failed: %v", err)
	}
	log.Info("capture finished")
}

const degToRad = 3.14159265358979323846 / 180

// anchorTimeLayout matches gpssim's CLI date format, e.g. "2014/12/20,00:00:00".
const anchorTimeLayout = "2006/01/02,15:04:05"

// parseAnchorTime parses a -t/-T value: the literal "now" (UTC wall clock,
// only meaningful with -T) or a "YYYY/MM/DD,hh:mm:ss" timestamp.
func parseAnchorTime(s string) (gtime.GPSTime, error) {
	if s == "now" {
		n := time.Now().UTC()
		return gtime.DateToGPS(gtime.Calendar{
			Year: n.Year(), Month: int(n.Month()), Day: n.Day(),
			Hour: n.Hour(), Min: n.Minute(), Sec: float64(n.Second()),
		}), nil
	}
	t, err := time.Parse(anchorTimeLayout, s)
	if err != nil {
		return gtime.GPSTime{}, fmt.Errorf("invalid time %q, want %q or \"now\": %w", s, anchorTimeLayout, err)
	}
	return gtime.DateToGPS(gtime.Calendar{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Min: t.Minute(), Sec: float64(t.Second()),
	}), nil
}

func buildSink(outPath, serialDev string, baud int, log *logrus.Logger) (sdr.Sink, func() error) {
	entry := log.WithField("component", "sink")
	switch {
	case serialDev != "":
		s, err := sdr.OpenSerial(serialDev, baud, entry)
		if err != nil {
			log.Fatalf("opening serial sink: %v", err)
		}
		return s, s.Close
	case outPath != "":
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("creating output file: %v", err)
		}
		s := sdr.NewFileSink(f, entry)
		return s, s.Close
	default:
		s := sdr.NewFileSink(os.Stdout, entry)
		return s, func() error { return nil }
	}
}
