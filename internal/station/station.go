// Package station embeds a small illustrative directory of named receiver
// locations, so the CLI can accept a station code in place of raw
// latitude/longitude/height (spec.md's "-l" start-position option
// generalized to a lookup table).
package station

import (
	"bufio"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mictronics/pluto-gps-sim/internal/gtime"
)

//go:embed stations.csv
var directoryCSV string

// Entry is one named receiver location.
type Entry struct {
	Code string
	Name string
	Geo  gtime.Geodetic
}

// Lookup resolves a station code (case-insensitive) from the embedded
// directory.
func Lookup(code string) (Entry, bool) {
	for _, e := range directory() {
		if strings.EqualFold(e.Code, code) {
			return e, true
		}
	}
	return Entry{}, false
}

// All returns every entry in the embedded directory.
func All() []Entry {
	return directory()
}

func directory() []Entry {
	var out []Entry
	sc := bufio.NewScanner(strings.NewReader(directoryCSV))
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if strings.HasPrefix(line, "code,") {
				continue
			}
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			continue
		}
		lat, errLat := strconv.ParseFloat(fields[2], 64)
		lon, errLon := strconv.ParseFloat(fields[3], 64)
		h, errH := strconv.ParseFloat(fields[4], 64)
		if errLat != nil || errLon != nil || errH != nil {
			continue
		}
		out = append(out, Entry{
			Code: fields[0],
			Name: fields[1],
			Geo: gtime.Geodetic{
				Lat:    lat * degToRad,
				Lon:    lon * degToRad,
				Height: h,
			},
		})
	}
	return out
}

const degToRad = 3.14159265358979323846 / 180

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Code, e.Name)
}
