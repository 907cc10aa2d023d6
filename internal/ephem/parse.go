package ephem

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/sirupsen/logrus"
)

// ErrKind distinguishes the fatal error categories spec.md §4.2/§7 call
// for: IO failure, version mismatch, wrong system letter, truncated block.
type ErrKind int

const (
	ErrIO ErrKind = iota
	ErrVersion
	ErrSystemLetter
	ErrTruncated
)

// ParseError is the error type returned by Parse for any fatal condition.
type ParseError struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ephem: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("ephem: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options controls how Parse interprets the navigation stream.
type Options struct {
	V3 bool // treat the stream as RINEX v3 rather than v2 (-3 flag)
}

const tagCol = 60 // 0-indexed start of the fixed-column RINEX header tag

func field(line string, start, width int) string {
	if start >= len(line) {
		return ""
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}

func tag(line string) string {
	return strings.TrimSpace(field(line, tagCol, 20))
}

func parseRinexFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, "D", "E")
	s = strings.ReplaceAll(s, "d", "e")
	return strconv.ParseFloat(s, 64)
}

func parseRinexInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Parse decodes a RINEX navigation stream (optionally gzip-compressed) per
// spec.md §4.2 and returns the populated Table.
func Parse(r io.Reader, opt Options, log *logrus.Entry) (*Table, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, gerr := gzip.NewReader(br)
		if gerr != nil {
			return nil, &ParseError{Kind: ErrIO, Msg: "cannot open gzip navigation stream", Err: gerr}
		}
		defer gz.Close()
		br = bufio.NewReader(gz)
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 256), 4096)

	table := &Table{Sets: make([]Set, 0, MaxSets)}

	if opt.V3 {
		err = parseV3(scanner, table, log)
	} else {
		err = parseV2(scanner, table, log)
	}
	if err != nil {
		return nil, err
	}
	if scanner.Err() != nil {
		return nil, &ParseError{Kind: ErrIO, Msg: "error reading navigation stream", Err: scanner.Err()}
	}
	if len(table.Sets) == 0 {
		log.Warn("no ephemeris sets decoded")
	}
	return table, nil
}

// setFor returns the set that a record with the given TOC belongs to,
// opening a new set whenever the candidate TOC is more than 3600s past the
// anchor TOC of the current set (spec.md §4.2 "set boundaries").
func setFor(table *Table, toc gtime.GPSTime) *Set {
	if len(table.Sets) > 0 {
		last := &table.Sets[len(table.Sets)-1]
		if anchor, ok := last.EarliestTOC(); ok {
			if toc.Sub(anchor) <= 3600 {
				return last
			}
		} else {
			return last
		}
	}
	if len(table.Sets) >= MaxSets {
		return &table.Sets[len(table.Sets)-1]
	}
	table.Sets = append(table.Sets, Set{})
	return &table.Sets[len(table.Sets)-1]
}

func storeRecord(table *Table, rec Record) {
	rec.normalize()
	s := setFor(table, rec.TOC)
	if rec.PRN < 1 || rec.PRN > MaxSVs {
		return
	}
	s[rec.PRN] = rec
}

// decodeOrbitLines fills the shared broadcast-orbit fields from the 6 data
// lines that follow every ephemeris block's header line, for both RINEX
// versions (the field layout is the same; only the column offsets differ).
func decodeOrbitLines(rows [6][4]float64, rec *Record, gpsWeek *int) {
	rec.IODE = int(rows[0][0])
	rec.Crs = rows[0][1]
	rec.Deln = rows[0][2]
	rec.M0 = rows[0][3]

	rec.Cuc = rows[1][0]
	rec.E = rows[1][1]
	rec.Cus = rows[1][2]
	rec.SqrtA = rows[1][3]

	toeSec := rows[2][0]
	rec.Cic = rows[2][1]
	rec.Omega0 = rows[2][2]
	rec.Cis = rows[2][3]

	rec.I0 = rows[3][0]
	rec.Crc = rows[3][1]
	rec.Omega = rows[3][2]
	rec.OmegaDot = rows[3][3]

	rec.IDot = rows[4][0]
	rec.CodeL2 = int(rows[4][1])
	*gpsWeek = int(rows[4][2])
	// rows[4][3] = L2 P data flag, not modeled.

	// rows[5][0] = SV accuracy (URA index), not modeled.
	rec.SVHealth = int(rows[5][1])
	rec.TGD = rows[5][2]
	rec.IODC = int(rows[5][3])

	rec.TOE = gtime.GPSTime{Week: *gpsWeek, Sec: toeSec}
}
