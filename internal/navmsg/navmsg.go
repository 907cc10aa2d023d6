// Package navmsg assembles the 1500-bit GPS navigation message — five
// 300-bit subframes of ten 30-bit words each — from broadcast ephemeris,
// and computes the GPS parity bits word by word (spec.md §4.4, P3, P5).
package navmsg

// SecPerSubframe is how long one subframe takes to transmit (spec.md §4.4:
// 300 bits at 50 bps).
const SecPerSubframe = 6.0

// Frame holds the parity-complete words for all five subframes of one
// superframe, ready for bit-level serialization onto a channel's carrier.
type Frame [SubframeCount][WordCount]uint32

// Builder incrementally produces superframes for one channel, carrying
// the D29*/D30* parity state across word and subframe boundaries the way
// a real receiver's bit stream would present them (spec.md §4.4's "next
// word's parity depends on the last two bits transmitted").
type Builder struct {
	raw       RawWords
	d29, d30  bool
	towCount  uint32 // current HOW TOW count, in 6-second units
}

// NewBuilder seeds a Builder from one satellite's packed subframes and the
// starting TOW count (GPS seconds-of-week / 6).
func NewBuilder(raw RawWords, startTowCount uint32) *Builder {
	return &Builder{raw: raw, towCount: startTowCount}
}

// Next assembles one superframe (subframes 1-5) at the builder's current
// TOW count, advancing the count by one (6s) per subframe and five per
// superframe, and returns it.
func (b *Builder) Next() Frame {
	var frame Frame
	for sf := 0; sf < SubframeCount; sf++ {
		frame[sf] = b.buildSubframe(sf)
		b.towCount = (b.towCount + 1) & 0x1FFFF // 17-bit rollover, P5
	}
	return frame
}

func (b *Builder) buildSubframe(sf int) [WordCount]uint32 {
	var words [WordCount]uint32

	subframeID := b.raw[sf][1]
	how := (b.towCount&0x1FFFF)<<7 | (subframeID&0x7)<<2

	words[0] = ComputeChecksum(b.raw[sf][0], b.d29, b.d30, false)
	b.d29, b.d30 = LastTwoBits(words[0])

	// Word 2 (HOW) and word 10 both carry two non-information-bearing
	// bits, which ComputeChecksum (nib=true) sets so that the word's last
	// two parity bits are zero.
	words[1] = ComputeChecksum(how<<6, b.d29, b.d30, true)
	b.d29, b.d30 = LastTwoBits(words[1])

	for w := 2; w < WordCount; w++ {
		nib := w == WordCount-1
		words[w] = ComputeChecksum(b.raw[sf][w], b.d29, b.d30, nib)
		b.d29, b.d30 = LastTwoBits(words[w])
	}

	return words
}
