// Package engine orchestrates one simulation run: it owns the parsed
// ephemeris table, the receiver trajectory, the 12-slot channel
// allocation table, and the modulator/iobuf/sdr pipeline that turns
// simulated time into an output I/Q stream (spec.md §4, §5, §8). Its
// goroutine shape — a producer filling frames and a consumer draining
// them — follows the teacher's server loop in rtksvr.go
// (FengXuebin-gnssgo/src/rtksvr.go), generalized from "read from a
// receiver stream" to "write to an SDR stream."
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/Mictronics/pluto-gps-sim/internal/channel"
	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/Mictronics/pluto-gps-sim/internal/iobuf"
	"github.com/Mictronics/pluto-gps-sim/internal/modulator"
	"github.com/Mictronics/pluto-gps-sim/internal/navmsg"
	"github.com/Mictronics/pluto-gps-sim/internal/orbit"
	"github.com/Mictronics/pluto-gps-sim/internal/trajectory"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// simStep is the fixed simulated-time increment per synthesis iteration
// (spec.md §4's 0.1s scheduling tick).
const simStep = 0.1

// maintenanceTicks is how many simStep ticks make up one 30s ephemeris/
// channel-allocation maintenance cycle: 30 / 0.1 = 300 (spec.md §9's
// "30s maintenance resolved to modulo 300" design note).
const maintenanceTicks = 300

// Engine runs one simulation end to end.
type Engine struct {
	cfg   Config
	RunID uuid.UUID
	log   *logrus.Entry

	ephemTable *ephem.Table
	setIdx     int

	rxGeo gtime.Geodetic
	rxPos gtime.ECEF
	traj  trajectory.Iterator

	allocTable channel.AllocTable
	mod        *modulator.Modulator
	dbuf       *iobuf.DoubleBuffer

	// startTime is the simulation's nominal time origin (g0 in spec.md
	// §4.6's code-phase reset formula), fixed for the life of the run.
	startTime gtime.GPSTime
	simTime   gtime.GPSTime
	tick      int
}

// New builds an Engine from cfg: parses the ephemeris file, resolves the
// start time and receiver position, and wires up the modulator/buffer.
func New(cfg Config) (*Engine, error) {
	if cfg.Log == nil {
		cfg.Log = logrus.New()
	}
	runID := uuid.New()
	log := cfg.Log.WithField("run_id", runID.String())

	f, err := os.Open(cfg.EphemPath)
	if err != nil {
		return nil, fmt.Errorf("engine: open ephemeris: %w", err)
	}
	defer f.Close()

	table, err := ephem.Parse(f, ephem.Options{V3: cfg.RinexV3}, log)
	if err != nil {
		return nil, fmt.Errorf("engine: parse ephemeris: %w", err)
	}
	table.IonoUTC.Enable = cfg.IonoEnable

	e := &Engine{
		cfg:        cfg,
		RunID:      runID,
		log:        log,
		ephemTable: table,
		rxGeo:      cfg.StaticPos,
	}

	startTime, err := e.resolveStartTime()
	if err != nil {
		return nil, err
	}
	e.startTime = startTime
	e.simTime = startTime

	e.rxPos = gtime.GeodeticToEcef(e.rxGeo)
	if cfg.Trajectory != nil {
		e.traj = cfg.Trajectory
	} else {
		e.traj = trajectory.Static{Pos: e.rxPos}
	}

	e.mod = modulator.New(cfg.SampleRate, cfg.DAC, cfg.NewPhase)
	e.dbuf = iobuf.New()

	return e, nil
}

// resolveStartTime picks the simulation's start time per spec.md §4.8.
// With no anchor, it defaults to the ephemeris file's own earliest TOC.
// With an anchor and OverwriteTOC, the anchor is aligned to a 2-hour
// boundary and every record's TOC/TOE (and the UTC parameters' WNt/tot)
// are shifted to start there. With an anchor and no overwrite, the anchor
// must fall within the file's own [earliest, latest] TOC range.
func (e *Engine) resolveStartTime() (gtime.GPSTime, error) {
	earliest, ok := e.ephemTable.EarliestTOC()
	if !ok {
		return gtime.GPSTime{}, fmt.Errorf("engine: ephemeris file contains no usable sets")
	}
	if !e.cfg.HasAnchor {
		return earliest, nil
	}

	anchor := e.cfg.AnchorTime
	if e.cfg.OverwriteTOC {
		anchor = anchor.FloorToSeconds(2 * 3600)
		e.ephemTable.ShiftTOC(anchor.Sub(earliest))
		return anchor, nil
	}

	latest, _ := e.ephemTable.LatestTOC()
	if anchor.Sub(earliest) < 0 || anchor.Sub(latest) > 0 {
		return gtime.GPSTime{}, fmt.Errorf("engine: anchor outside ephemeris window [%+v, %+v]", earliest, latest)
	}
	return anchor, nil
}

func (e *Engine) currentSet() (*ephem.Set, bool) {
	if e.setIdx < 0 || e.setIdx >= len(e.ephemTable.Sets) {
		return nil, false
	}
	return &e.ephemTable.Sets[e.setIdx], true
}

// Run drives the simulation to completion or until ctx is canceled: a
// producer goroutine advances simulated time and fills I/Q frames, a
// consumer goroutine drains them to cfg.Sink.
func (e *Engine) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go e.produce(ctx, errCh)
	go e.consume(ctx, errCh)

	select {
	case err := <-errCh:
		e.dbuf.Stop()
		return err
	case <-ctx.Done():
		e.dbuf.Stop()
		return ctx.Err()
	}
}

func (e *Engine) produce(ctx context.Context, errCh chan<- error) {
	totalTicks := int(e.cfg.DurationSec / simStep)
	samplesPerTick := int(e.cfg.SampleRate * simStep)

	e.updatePosition(0)
	e.runMaintenance()
	e.updateChannels()

	var frame *iobuf.Frame
	pos := 0

	for e.tick = 0; e.tick < totalTicks; e.tick++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if e.tick > 0 {
			e.updatePosition(float64(e.tick) * simStep)
			if e.tick%maintenanceTicks == 0 {
				e.runMaintenance()
			}
			e.updateChannels()
		}

		for i := 0; i < samplesPerTick; i++ {
			if frame == nil {
				frame = e.dbuf.BeginWrite()
				if frame == nil {
					return // stopped
				}
				pos = 0
			}
			s := e.mod.GenerateSample(&e.allocTable)
			frame.I[pos] = s.I
			frame.Q[pos] = s.Q
			pos++
			if pos == iobuf.FrameSamples {
				frame.Len = pos
				e.dbuf.EndWrite()
				frame = nil
			}
		}
		e.simTime = e.simTime.Add(simStep)
	}

	if frame != nil {
		frame.Len = pos
		e.dbuf.EndWrite()
	}
	e.dbuf.Stop()
	errCh <- nil
}

func (e *Engine) consume(ctx context.Context, errCh chan<- error) {
	for {
		f := e.dbuf.TakeFull()
		if f == nil {
			return
		}
		if err := e.cfg.Sink.WriteFrame(f); err != nil {
			e.log.WithError(err).Error("sink write failed")
			e.dbuf.Release()
			errCh <- err
			return
		}
		e.dbuf.Release()
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// updatePosition advances the receiver trajectory. It runs once per
// synthesis tick (spec.md §4.6), not just on the 30s maintenance cycle, so
// a dynamic trajectory's Doppler signature isn't stale for up to 30s.
func (e *Engine) updatePosition(elapsed float64) {
	if pos, ok := e.traj.Next(elapsed); ok {
		e.rxPos = pos
		e.rxGeo = gtime.EcefToGeodetic(pos)
	}
}

// updateChannels refreshes every active channel's carrier Doppler (the
// baseband offset from L1), Doppler-shifted code frequency, pseudorange,
// and azimuth/elevation from the current
// receiver position (spec.md §4.6 steps 1-2). It runs once per synthesis
// tick, independently of the 30s nav-message/allocation maintenance cycle
// run by runMaintenance.
func (e *Engine) updateChannels() {
	set, ok := e.currentSet()
	if !ok {
		return
	}
	for _, c := range e.allocTable.Active() {
		rec := &set[c.PRN]
		rng := orbit.ComputeRange(e.rxPos, e.rxGeo, rec, e.simTime, &e.ephemTable.IonoUTC)
		c.CarrierFreq = -rng.PseudorangeRate / gtime.LambdaL1
		c.CodeFreq = gtime.CodeFreq - gtime.CodeFreq*rng.PseudorangeRate/gtime.CLight
		c.LastRange = rng.Pseudorange
		c.Az, c.El = rng.Az, rng.El
	}
}

// runMaintenance re-selects the active ephemeris set for the current
// simulated time and reallocates channels against newly visible
// satellites (spec.md §4.5, §4.8). It runs once every 30 simulated
// seconds (maintenanceTicks); the per-tick Doppler/range refresh that
// every other part of spec.md §4.6 needs lives in updateChannels instead.
func (e *Engine) runMaintenance() {
	e.selectEphemSet()

	set, ok := e.currentSet()
	if !ok {
		e.allocTable.Allocate(nil, e.newBuilder)
		return
	}

	maskRad := e.cfg.ElevationMaskDeg * 3.14159265358979323846 / 180

	var visible []channel.Visible
	for prn := 1; prn <= ephem.MaxSVs; prn++ {
		rec := &set[prn]
		if !rec.Valid {
			continue
		}
		rng := orbit.ComputeRange(e.rxPos, e.rxGeo, rec, e.simTime, &e.ephemTable.IonoUTC)
		if orbit.CheckVisibility(rec.Valid, rng.El, maskRad) {
			visible = append(visible, channel.Visible{PRN: prn, Azimuth: rng.Az, Elev: rng.El})
		}
	}

	before := make(map[int]bool, channel.MaxChannels)
	for _, c := range e.allocTable.Active() {
		before[c.PRN] = true
	}

	e.allocTable.Allocate(visible, e.newBuilder)

	for _, c := range e.allocTable.Active() {
		rec := &set[c.PRN]
		rng := orbit.ComputeRange(e.rxPos, e.rxGeo, rec, e.simTime, &e.ephemTable.IonoUTC)
		c.CarrierFreq = -rng.PseudorangeRate / gtime.LambdaL1
		c.CodeFreq = gtime.CodeFreq - gtime.CodeFreq*rng.PseudorangeRate/gtime.CLight
		c.LastRange = rng.Pseudorange
		c.Az, c.El = rng.Az, rng.El
		if !before[c.PRN] {
			c.SyncToRange(e.startTime, e.simTime, rng.Pseudorange)
		}
	}
}

func (e *Engine) selectEphemSet() {
	best, bestDiff := -1, -1.0
	for i := range e.ephemTable.Sets {
		earliest, ok := e.ephemTable.Sets[i].EarliestTOC()
		if !ok {
			continue
		}
		diff := e.simTime.Sub(earliest)
		if diff < -3600 || diff > 3600 {
			continue
		}
		ad := diff
		if ad < 0 {
			ad = -ad
		}
		if best == -1 || ad < bestDiff {
			best, bestDiff = i, ad
		}
	}
	if best >= 0 {
		e.setIdx = best
	}
}

func (e *Engine) newBuilder(prn int) *navmsg.Builder {
	set, ok := e.currentSet()
	if !ok {
		set = &ephem.Set{}
	}
	raw := navmsg.EphToSubframes(&set[prn], &e.ephemTable.IonoUTC)
	towCount := uint32(e.simTime.Sec) / uint32(navmsg.SecPerSubframe)
	return navmsg.NewBuilder(raw, towCount)
}
