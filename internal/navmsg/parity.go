package navmsg

// bmask are the six GPS parity bit-selection masks from IS-GPS-200, one
// per output parity bit D25..D30.
var bmask = [6]uint32{
	0x3B1F3480, 0x1D8F9A40, 0x2EC7CD00, 0x1763E680, 0x2BB1F340, 0x0B7A89C0,
}

// ComputeChecksum fills in a 30-bit GPS word's six parity bits given the
// previous word's last two transmitted bits (D29star, D30star) and
// whether this word carries the two non-information-bearing bits used by
// words 2 and 10 (nib). source has its data bits in 29..6 and zero parity
// bits in 5..0; the returned word has the same data bits plus the
// computed parity, still left-shifted by 6 (P3).
func ComputeChecksum(source uint32, d29star, d30star bool, nib bool) uint32 {
	d := source & 0x3FFFFFC0

	var D29, D30 uint32
	if d29star {
		D29 = 1
	}
	if d30star {
		D30 = 1
	}

	if nib {
		// Words 2 and 10 carry two non-information-bearing bits instead
		// of real data at raw positions 6 and 7. Set bit 6 first (its
		// mask doesn't depend on bit 7) then bit 7 from the updated word
		// (its mask depends on both), each equal to what the final
		// parity formula below would compute for that position — which
		// makes the word's own trailing two parity bits, D29 and D30,
		// come out zero (P3).
		d &^= 0xC0
		bit6 := (D30 ^ countBits(d&bmask[4])) & 1
		d |= bit6 << 6
		bit7 := (D29 ^ countBits(d&bmask[5])) & 1
		d |= bit7 << 7
	}

	// Parity is computed over the source data bits; only the transmitted
	// data bits are inverted when D30star is 1.
	word := (d30XOR(D30) ^ d) |
		((D29 ^ countBits(d&bmask[0])) << 5) |
		((D30 ^ countBits(d&bmask[1])) << 4) |
		((D29 ^ countBits(d&bmask[2])) << 3) |
		((D30 ^ countBits(d&bmask[3])) << 2) |
		((D30 ^ countBits(d&bmask[4])) << 1) |
		((D29 ^ countBits(d&bmask[5])) << 0)

	return word & 0x3FFFFFFF
}

// d30XOR broadcasts a single bit across the whole 30-bit field so XOR-ing
// it with d flips every data bit when D30star is 1, matching the GPS
// word-inversion rule, which applies to every word.
func d30XOR(d30 uint32) uint32 {
	if d30 == 0 {
		return 0
	}
	return 0x3FFFFFC0
}

// LastTwoBits extracts D29*/D30*, the final two transmitted bits of word,
// used as the carry into the next word's ComputeChecksum call.
func LastTwoBits(word uint32) (d29star, d30star bool) {
	d29star = word&0x2 != 0
	d30star = word&0x1 != 0
	return
}
