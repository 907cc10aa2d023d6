// Package trajectory supplies the receiver position fed into each
// simulation step: either fixed, or stepped from a CSV file of ECEF
// waypoints (spec.md §4.7).
package trajectory

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
)

// MaxWaypoints bounds how much of a trajectory file is read, matching the
// reference's fixed-size waypoint table.
const MaxWaypoints = 3000

// Waypoint is one 10Hz sample of the receiver's simulated position.
type Waypoint struct {
	TimeSec float64
	Pos     gtime.ECEF
}

// Iterator yields receiver positions one simulation step at a time.
type Iterator interface {
	// Next returns the position to use for the given elapsed simulated
	// seconds, and false once the trajectory is exhausted.
	Next(elapsed float64) (gtime.ECEF, bool)
}

// Static is a fixed-point Iterator: every step returns the same position.
type Static struct {
	Pos gtime.ECEF
}

func (s Static) Next(float64) (gtime.ECEF, bool) { return s.Pos, true }

// CSVReader steps through waypoints parsed from a `time,x,y,z` text file
// (spec.md §4.7's 10Hz grammar), holding the most recent sample at or
// before the requested elapsed time and reporting exhaustion once the
// last row's time has passed.
type CSVReader struct {
	rows []Waypoint
	idx  int
}

// LoadCSV reads up to MaxWaypoints rows of `time,x,y,z` from r. A header
// row, if present, is detected by a non-numeric first field and skipped.
func LoadCSV(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var rows []Waypoint
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trajectory: %w", err)
		}
		tSec, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue // header row or malformed line, skip rather than fail
		}
		x, errX := strconv.ParseFloat(rec[1], 64)
		y, errY := strconv.ParseFloat(rec[2], 64)
		z, errZ := strconv.ParseFloat(rec[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("trajectory: malformed row %v", rec)
		}
		rows = append(rows, Waypoint{TimeSec: tSec, Pos: gtime.ECEF{X: x, Y: y, Z: z}})
		if len(rows) >= MaxWaypoints {
			break
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trajectory: no waypoints parsed")
	}
	return &CSVReader{rows: rows}, nil
}

// Next implements Iterator: advances idx past every waypoint whose time
// has elapsed and returns the most recent one, or false once elapsed
// exceeds the trajectory's last waypoint.
func (c *CSVReader) Next(elapsed float64) (gtime.ECEF, bool) {
	if elapsed > c.rows[len(c.rows)-1].TimeSec {
		return c.rows[len(c.rows)-1].Pos, false
	}
	for c.idx+1 < len(c.rows) && c.rows[c.idx+1].TimeSec <= elapsed {
		c.idx++
	}
	return c.rows[c.idx].Pos, true
}
