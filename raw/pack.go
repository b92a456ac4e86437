package raw

import (
	"encoding/binary"
	"fmt"
)

// Pack is the inverse of Decode: it packs width*height samples at the given
// depth into a new buffer of RequiredSize bytes. 12 and 14-bit samples are
// written most significant bit first; 16-bit samples as little-endian words.
// When swap is set every 16-bit word of the result is byte-swapped.
func Pack(samples []uint16, width, height int, depth BitDepth, swap bool) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if !depth.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, int(depth))
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrSizeMismatch, len(samples), width, height)
	}
	limit := depth.MaxValue()
	for i, s := range samples {
		if uint32(s) > limit {
			return nil, fmt.Errorf("%w: sample %d = %#x at %v", ErrSampleOutOfRange, i, s, depth)
		}
	}

	dst := make([]byte, RequiredSize(width, height, depth, swap))
	packInto(dst, samples, depth, swap)
	return dst, nil
}

// packInto writes samples into dst, which must hold RequiredSize bytes and
// be zeroed past the packed data.
func packInto(dst []byte, samples []uint16, depth BitDepth, swap bool) {
	if depth == Depth16 {
		for i, s := range samples {
			if swap {
				s = swap16(s)
			}
			binary.LittleEndian.PutUint16(dst[2*i:], s)
		}
		return
	}

	d := uint(depth)
	var acc uint32
	var nbits uint
	p := 0
	for _, s := range samples {
		acc = acc<<d | uint32(s)
		nbits += d
		for nbits >= 8 {
			nbits -= 8
			dst[physical(p, swap)] = byte(acc >> nbits)
			p++
		}
		acc &= 1<<nbits - 1
	}
	if nbits > 0 {
		dst[physical(p, swap)] = byte(acc << (8 - nbits))
	}
}
