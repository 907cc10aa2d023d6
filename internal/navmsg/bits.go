package navmsg

// WordCount is the number of 30-bit words per subframe.
const WordCount = 10

// SubframeCount is the number of subframes assembled per ephemeris set
// (1 through 5, spec.md §4.4).
const SubframeCount = 5

// Each raw word is stored left-shifted by 6 bits: bits 29..6 hold the 24
// information/parity-source bits, bits 5..0 are filled in by
// ComputeChecksum. This mirrors the teacher's GetBitU/SetBitU convention
// of packing fields into a fixed-width integer by explicit shift-and-mask
// rather than a bitstream writer (FengXuebin-gnssgo/src/rtkcmn.go),
// adapted here to build up a 30-bit GPS word instead of parsing one down.

// countBits returns the parity (0 or 1) of the number of set bits in v.
func countBits(v uint32) uint32 {
	var c uint32
	for v != 0 {
		c ^= v & 1
		v >>= 1
	}
	return c
}
