// Package bitfield extracts and places inclusive bit ranges of 32-bit words.
package bitfield

// Extract returns word[hi:lo] shifted down so that word[lo] lands at bit 0.
// An inverted range yields 0.
func Extract(word uint32, hi, lo uint) uint32 {
	if hi < lo || hi > 31 {
		return 0
	}
	width := hi - lo + 1
	if width == 32 {
		return word
	}
	mask := uint32(1)<<width - 1
	return (word >> lo) & mask
}

// Insert ORs field into word starting at bit lo.
func Insert(word, field uint32, lo uint) uint32 {
	return word | field<<lo
}

// SignExtend widens the low bits of val to a signed 32-bit value.
func SignExtend(val uint32, bits int) int32 {
	shift := 32 - bits
	return int32(val<<uint(shift)) >> uint(shift)
}
