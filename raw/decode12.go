package raw

// Two 12-bit samples share three bytes:
//
//	byte 0   byte 1   byte 2
//	AAAAAAAA AAAABBBB BBBBBBBB
//
// Sample A reads bytes {0,1} and drops the low nibble; sample B reads bytes
// {1,2} and keeps the low 12 bits.
var (
	offsets12 = [2][2]int{{0, 1}, {1, 2}}
	shifts12  = [2]uint{4, 0}
)

// sample12 extracts linear sample n from a 12-bit packed stream.
func sample12(data []byte, n int, swap bool) uint32 {
	k := n % 2
	base := (n / 2) * 3
	b0 := byteAt(data, base+offsets12[k][0], swap)
	b1 := byteAt(data, base+offsets12[k][1], swap)
	v := b0<<8 | b1
	return (v >> shifts12[k]) & 0xFFF
}

// decode12Rows decodes rows [y0, y1) of a 12-bit stream into img.
func decode12Rows(img *Image, data []byte, swap bool, y0, y1 int) {
	w := img.Width
	for y := y0; y < y1; y++ {
		row := img.Pix[y*w : (y+1)*w]
		n := y * w
		for x := range row {
			row[x] = float32(sample12(data, n+x, swap))
		}
	}
}
