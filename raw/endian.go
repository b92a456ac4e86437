package raw

// A swapped stream stores every 16-bit word with its bytes exchanged, so
// logical byte p of the packed stream lives at physical byte p^1. Packed
// groups of 3 or 7 bytes straddle word boundaries differently depending on
// whether the group starts at an even or odd offset; addressing through
// physical keeps both cases correct without special-casing them.

// physical returns the buffer index holding logical byte p.
func physical(p int, swap bool) int {
	if swap {
		return p ^ 1
	}
	return p
}

// byteAt returns logical byte p of the packed stream.
func byteAt(data []byte, p int, swap bool) uint32 {
	return uint32(data[physical(p, swap)])
}

// swap16 exchanges the high and low byte of v.
func swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// SwapWords exchanges the bytes of every complete 16-bit word of data in
// place. A trailing odd byte is left untouched.
func SwapWords(data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = data[i+1], data[i]
	}
}
