package navmsg

import "math"

// Power-of-two scale factors from the GPS interface specification, used to
// convert each ephemeris field's physical units into its transmitted
// fixed-point representation (spec.md §4.4).
const (
	pow2M5  = 1.0 / 32
	pow2M19 = 1.0 / 524288
	pow2M29 = 1.0 / 536870912
	pow2M31 = 1.0 / 2147483648
	pow2M33 = 1.0 / 8589934592
	pow2M43 = 1.0 / 8796093022208
	pow2M50 = 1.0 / 1125899906842624
	pow2M55 = 1.0 / 36028797018963968
)

func scaledRound(v, scale float64) int64 {
	return int64(math.Round(v / scale))
}
