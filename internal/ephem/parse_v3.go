package ephem

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
	"github.com/sirupsen/logrus"
)

// v3FloatCols are the 0-indexed starts of the 4-wide, 19-char data-float
// grid used throughout a RINEX v3 ephemeris block (spec.md §4.2: "cols
// 5-23, 24-42, 43-61, 62-80").
var v3FloatCols = [4]int{4, 23, 42, 61}

const v3FloatWidth = 19

func parseV3(scanner *bufio.Scanner, table *Table, log *logrus.Entry) error {
	iu := &table.IonoUTC
	sawVersionLine := false

	for scanner.Scan() {
		line := scanner.Text()
		t := tag(line)
		switch {
		case t == "RINEX VERSION / TYPE":
			sawVersionLine = true
			verStr := strings.TrimSpace(field(line, 0, 9))
			ver, _ := strconv.ParseFloat(verStr, 64)
			if ver < 3.0 {
				return &ParseError{Kind: ErrVersion, Msg: "RINEX version below 3.0"}
			}
			sysLetter := field(line, 40, 1)
			if sysLetter != "" && sysLetter != "G" && sysLetter != "N" {
				return &ParseError{Kind: ErrSystemLetter, Msg: "RINEX system letter is not GPS (G/N)"}
			}
		case t == "IONOSPHERIC CORR":
			label := field(line, 0, 4)
			switch label {
			case "GPSA":
				readFourFloats(line, []int{4, 16, 28, 40}, 12, &iu.Alpha)
				iu.sawAlpha = true
			case "GPSB":
				readFourFloats(line, []int{4, 16, 28, 40}, 12, &iu.Beta)
				iu.sawBeta = true
			}
		case t == "TIME SYSTEM CORR":
			label := field(line, 0, 4)
			if label == "GPUT" {
				iu.A0, _ = parseRinexFloat(field(line, 4, 17))
				iu.A1, _ = parseRinexFloat(field(line, 21, 17))
				tInt, _ := parseRinexInt(field(line, 38, 9))
				iu.Tot = float64(tInt)
				iu.WNt, _ = parseRinexInt(field(line, 47, 9))
				iu.sawUTC = true
			}
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
	_ = sawVersionLine

	for {
		line1, ok := nextLine(scanner)
		if !ok {
			break
		}
		if strings.TrimSpace(line1) == "" {
			continue
		}
		if !strings.HasPrefix(line1, "G") {
			// not a GPS record (another constellation's block); skip its
			// 7 continuation lines and move on.
			for i := 0; i < 7; i++ {
				if _, ok := nextLine(scanner); !ok {
					return &ParseError{Kind: ErrTruncated, Msg: "truncated RINEX v3 navigation stream"}
				}
			}
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
			return &ParseError{Kind: ErrTruncated, Msg: "truncated RINEX v3 ephemeris block"}
		}

		rec := Record{Valid: true}
		prefix := line1
		if len(prefix) > 23 {
			prefix = prefix[:23]
		}
		fields := strings.Fields(prefix)
		if len(fields) < 7 {
			log.WithField("line", line1).Warn("malformed RINEX v3 ephemeris header line")
			continue
		}
		prn, _ := strconv.Atoi(strings.TrimPrefix(fields[0], "G"))
		rec.PRN = prn
		year, _ := strconv.Atoi(fields[1])
		mon, _ := strconv.Atoi(fields[2])
		day, _ := strconv.Atoi(fields[3])
		hour, _ := strconv.Atoi(fields[4])
		minute, _ := strconv.Atoi(fields[5])
		sec, _ := strconv.Atoi(fields[6])

		rec.TOC = gtime.DateToGPS(gtime.Calendar{Year: year, Month: mon, Day: day, Hour: hour, Min: minute, Sec: float64(sec)})

		rec.Af0, _ = parseRinexFloat(field(line1, v3FloatCols[1], v3FloatWidth))
		rec.Af1, _ = parseRinexFloat(field(line1, v3FloatCols[2], v3FloatWidth))
		rec.Af2, _ = parseRinexFloat(field(line1, v3FloatCols[3], v3FloatWidth))

		var rows [6][4]float64
		for i := 0; i < 6; i++ {
			for j, start := range v3FloatCols {
				rows[i][j], _ = parseRinexFloat(field(lines[i], start, v3FloatWidth))
			}
		}
		var week int
		decodeOrbitLines(rows, &rec, &week)

		storeRecord(table, rec)
	}
	return nil
}
