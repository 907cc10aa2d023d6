package ephem

import (
	"bufio"
	"strings"

	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/sirupsen/logrus"
)

// v2FloatCols are the 0-indexed starts of the 4-wide, 19-char data-float
// grid used by lines 2-7 of a RINEX v2 ephemeris block (spec.md §4.2:
// "4 floats each at cols 4-22, 23-41, 42-60, 61-79").
var v2FloatCols = [4]int{3, 22, 41, 60}

const v2FloatWidth = 19

func parseV2(scanner *bufio.Scanner, table *Table, log *logrus.Entry) error {
	iu := &table.IonoUTC

	// Header.
	for scanner.Scan() {
		line := scanner.Text()
		t := tag(line)
		switch {
		case t == "ION ALPHA":
			readFourFloats(line, []int{2, 14, 26, 38}, 12, &iu.Alpha)
			iu.sawAlpha = true
		case t == "ION BETA":
			readFourFloats(line, []int{2, 14, 26, 38}, 12, &iu.Beta)
			iu.sawBeta = true
		case strings.HasPrefix(t, "DELTA-UTC"):
			iu.A0, _ = parseRinexFloat(field(line, 0, 19))
			iu.A1, _ = parseRinexFloat(field(line, 19, 19))
			tInt, _ := parseRinexInt(field(line, 38, 9))
			iu.Tot = float64(tInt)
			iu.WNt, _ = parseRinexInt(field(line, 47, 9))
			iu.sawUTC = true
		case t == "LEAP SECONDS":
			iu.DeltaTls, _ = parseRinexInt(field(line, 0, 6))
			iu.sawLeap = true
		case t == "END OF HEADER":
			goto body
		}
	}
body:
	iu.recomputeValidity()
	iu.Enable = true

	// Ephemeris blocks: groups of 8 lines.
	for {
		line1, ok := nextLine(scanner)
		if !ok {
			break
		}
		if strings.TrimSpace(line1) == "" {
			continue
		}
		lines := make([]string, 7)
		n := 0
		for ; n < 7; n++ {
			l, ok := nextLine(scanner)
			if !ok {
				break
			}
			lines[n] = l
		}
		if n < 7 {
			return &ParseError{Kind: ErrTruncated, Msg: "truncated RINEX v2 ephemeris block"}
		}

		rec := Record{Valid: true}
		prn, _ := parseRinexInt(field(line1, 0, 2))
		rec.PRN = prn

		yy, _ := parseRinexInt(field(line1, 3, 2))
		// v2's documented truncation: the reference only consumes the
		// leading two characters of the seconds field rather than the
		// full F5.1 width; preserved per spec.md §9.
		mon, _ := parseRinexInt(field(line1, 5, 3))
		day, _ := parseRinexInt(field(line1, 8, 3))
		hour, _ := parseRinexInt(field(line1, 11, 3))
		minute, _ := parseRinexInt(field(line1, 14, 3))
		secStr := field(line1, 17, 2) // documented truncation, not the full 5-char field
		sec, _ := parseRinexInt(secStr)

		year := yy
		if year < 80 {
			year += 2000
		} else {
			year += 1900
		}
		toc := gtime.DateToGPS(gtime.Calendar{Year: year, Month: mon, Day: day, Hour: hour, Min: minute, Sec: float64(sec)})
		rec.TOC = toc

		rec.Af0, _ = parseRinexFloat(field(line1, 22, 19))
		rec.Af1, _ = parseRinexFloat(field(line1, 41, 19))
		rec.Af2, _ = parseRinexFloat(field(line1, 60, 19))

		var rows [6][4]float64
		for i := 0; i < 6; i++ {
			for j, start := range v2FloatCols {
				rows[i][j], _ = parseRinexFloat(field(lines[i], start, v2FloatWidth))
			}
		}
		var week int
		decodeOrbitLines(rows, &rec, &week)
		// line 8 (lines[6]) is reserved, intentionally unparsed.

		storeRecord(table, rec)
	}
	return nil
}

func readFourFloats(line string, starts []int, width int, out *[4]float64) {
	for i, s := range starts {
		out[i], _ = parseRinexFloat(field(line, s, width))
	}
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return scanner.Text(), true
}
