// Package cacode generates the 1023-chip GPS L1 C/A Gold codes used to
// spread each channel's navigation data (spec.md §4, P4).
package cacode

// ChipCount is the length of one C/A code period.
const ChipCount = 1023

// g2Delay is the G2 tap delay (chips) per PRN, 1..32, from the GPS
// interface specification's C/A code phase assignment table. Index 0 is
// unused (PRNs are 1-based).
var g2Delay = [33]int{
	0,
	5, 6, 7, 8, 17, 18, 139, 140, 141, 251,
	252, 254, 255, 256, 257, 258, 469, 470, 471, 472,
	473, 474, 509, 512, 513, 514, 515, 516, 859, 860,
	861, 862,
}

// Generate returns the ±1 chip sequence for the given PRN (1..32), or an
// all-zero sequence for an out-of-range PRN. Registers carry ±1 values
// directly (not 0/1 bits) so the feedback taps are plain multiplication,
// matching how GPS signal simulators in this family implement the G1/G2
// generator polynomials (x^10+x^3+1 and x^10+x^9+x^8+x^6+x^3+x^2+1).
// Inside the registers -1 stands for a 1 bit; the returned chips map a
// code bit of 1 to +1 and 0 to -1.
func Generate(prn int) []int8 {
	code := make([]int8, ChipCount)
	if prn < 1 || prn >= len(g2Delay) {
		return code
	}

	var r1, r2 [10]int8
	for i := range r1 {
		r1[i] = -1
		r2[i] = -1
	}

	g1 := make([]int8, ChipCount)
	g2 := make([]int8, ChipCount)

	for i := 0; i < ChipCount; i++ {
		g1[i] = r1[9]
		g2[i] = r2[9]

		c1 := r1[2] * r1[9]
		c2 := r2[1] * r2[2] * r2[5] * r2[7] * r2[8] * r2[9]

		for j := 9; j > 0; j-- {
			r1[j] = r1[j-1]
			r2[j] = r2[j-1]
		}
		r1[0] = c1
		r2[0] = c2
	}

	delay := g2Delay[prn]
	for i, j := 0, ChipCount-delay; i < ChipCount; i, j = i+1, j+1 {
		code[i] = -g1[i] * g2[j%ChipCount]
	}
	return code
}

// Balance returns the count of +1 and -1 chips in a code (P4: a balanced
// Gold code has 512 of one and 511 of the other).
func Balance(code []int8) (plus, minus int) {
	for _, c := range code {
		if c > 0 {
			plus++
		} else {
			minus++
		}
	}
	return
}

// CrossCorrelate computes the full (unnormalized) cyclic cross-correlation
// of two equal-length ±1 codes at the given lag (b shifted by lag chips) —
// used by P4's ternary cross-correlation property test across lags.
func CrossCorrelate(a, b []int8, lag int) int {
	n := len(a)
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(a[i]) * int(b[(i+lag)%n])
	}
	return sum
}
