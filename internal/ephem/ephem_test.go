package ephem_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/ephem"
	"github.com/stretchr/testify/require"
)

// lineBuilder assembles a fixed-column RINEX line by poking substrings into
// specific 0-indexed column ranges, independent of write order.
type lineBuilder struct {
	buf []byte
}

func newLine(width int) *lineBuilder {
	b := make([]byte, width)
	for i := range b {
		b[i] = ' '
	}
	return &lineBuilder{buf: b}
}

func (l *lineBuilder) set(start, width int, s string) *lineBuilder {
	if start+width > len(l.buf) {
		grown := make([]byte, start+width)
		copy(grown, l.buf)
		for i := len(l.buf); i < len(grown); i++ {
			grown[i] = ' '
		}
		l.buf = grown
	}
	if len(s) > width {
		s = s[:width]
	}
	// right-justify, RINEX numeric-field convention
	pad := width - len(s)
	copy(l.buf[start+pad:start+width], s)
	return l
}

func (l *lineBuilder) setTag(tag string) *lineBuilder {
	return l.set(60, len(tag), tag)
}

func (l *lineBuilder) String() string { return string(l.buf) }

func f(v float64) string { return fmt.Sprintf("%.11E", v) }

func TestParseV2Basic(t *testing.T) {
	var lines []string
	lines = append(lines, newLine(80).setTag("RINEX VERSION / TYPE").String())
	lines = append(lines, newLine(80).set(2, 12, f(1.1e-8)).set(14, 12, f(0)).set(26, 12, f(-5.9e-8)).set(38, 12, f(-5.9e-8)).setTag("ION ALPHA").String())
	lines = append(lines, newLine(80).set(2, 12, f(1.4e5)).set(14, 12, f(0)).set(26, 12, f(-3.2e5)).set(38, 12, f(1.9e5)).setTag("ION BETA").String())
	lines = append(lines, newLine(80).set(0, 19, f(1.8e-9)).set(19, 19, f(0)).set(38, 9, "61440").set(47, 9, "2077").setTag("DELTA-UTC: A0,A1,T,W").String())
	lines = append(lines, newLine(80).set(0, 6, "18").setTag("LEAP SECONDS").String())
	lines = append(lines, newLine(80).setTag("END OF HEADER").String())

	line1 := newLine(79).
		set(0, 2, "5").
		set(3, 2, "14").
		set(5, 3, "12").
		set(8, 3, "20").
		set(11, 3, "0").
		set(14, 3, "0").
		set(17, 2, "0").
		set(22, 19, f(1.0e-4)).
		set(41, 19, f(2.0e-11)).
		set(60, 19, f(0)).
		String()

	l2 := newLine(79).set(3, 19, f(10)).set(22, 19, f(5.0)).set(41, 19, f(4.3e-9)).set(60, 19, f(0.5)).String()
	l3 := newLine(79).set(3, 19, f(1.0e-6)).set(22, 19, f(0.01)).set(41, 19, f(1.0e-6)).set(60, 19, f(5153.6)).String()
	l4 := newLine(79).set(3, 19, f(345600)).set(22, 19, f(1e-7)).set(41, 19, f(1.5)).set(60, 19, f(1e-7)).String()
	l5 := newLine(79).set(3, 19, f(0.95)).set(22, 19, f(200)).set(41, 19, f(0.3)).set(60, 19, f(-8.0e-9)).String()
	l6 := newLine(79).set(3, 19, f(0)).set(22, 19, f(0)).set(41, 19, f(2077)).set(60, 19, f(0)).String()
	l7 := newLine(79).set(3, 19, f(0)).set(22, 19, f(0)).set(41, 19, f(-1.0e-8)).set(60, 19, f(15)).String()
	l8 := newLine(79).String()

	lines = append(lines, line1, l2, l3, l4, l5, l6, l7, l8)

	stream := strings.NewReader(strings.Join(lines, "\n") + "\n")
	table, err := ephem.Parse(stream, ephem.Options{V3: false}, nil)
	require.NoError(t, err)
	require.Len(t, table.Sets, 1)

	rec := table.Sets[0][5]
	require.True(t, rec.Valid)
	require.Equal(t, 5, rec.PRN)
	require.InDelta(t, 0.95, rec.I0, 1e-9)
	require.InDelta(t, 5153.6, rec.SqrtA, 1e-6)
	require.Equal(t, 15, rec.IODC)
	require.True(t, table.IonoUTC.Valid)
	require.Equal(t, 18, table.IonoUTC.DeltaTls)
}

func TestParseV3RejectsOldVersion(t *testing.T) {
	line := newLine(80).set(0, 9, "2.11").setTag("RINEX VERSION / TYPE").String()
	_, err := ephem.Parse(strings.NewReader(line+"\n"), ephem.Options{V3: true}, nil)
	require.Error(t, err)
	var pe *ephem.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, ephem.ErrVersion, pe.Kind)
}

func TestIonoUtcIncompleteNotFatal(t *testing.T) {
	lines := []string{
		newLine(80).setTag("RINEX VERSION / TYPE").String(),
		newLine(80).setTag("END OF HEADER").String(),
	}
	table, err := ephem.Parse(strings.NewReader(strings.Join(lines, "\n")+"\n"), ephem.Options{V3: false}, nil)
	require.NoError(t, err)
	require.False(t, table.IonoUTC.Valid)
}
