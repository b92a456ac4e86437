package raw

import "encoding/binary"

// sample16 reads word n. Unswapped streams are little-endian.
func sample16(data []byte, n int, swap bool) uint32 {
	v := binary.LittleEndian.Uint16(data[2*n:])
	if swap {
		v = swap16(v)
	}
	return uint32(v)
}

// decode16Rows decodes rows [y0, y1) of a 16-bit stream into img.
func decode16Rows(img *Image, data []byte, swap bool, y0, y1 int) {
	w := img.Width
	for y := y0; y < y1; y++ {
		row := img.Pix[y*w : (y+1)*w]
		n := y * w
		for x := range row {
			row[x] = float32(sample16(data, n+x, swap))
		}
	}
}
