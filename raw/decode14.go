package raw

// Four 14-bit samples share seven bytes, most significant bit first. Each
// sample is assembled from a 3-byte window and shifted into place:
//
//	sample  window   shift
//	0       {0,0,1}  2
//	1       {1,2,3}  4
//	2       {3,4,5}  6
//	3       {5,5,6}  0
//
// Samples 0 and 3 repeat a byte to fill the window; the repeated copy lands
// above bit 13 and is masked off.
var (
	offsets14 = [4][3]int{{0, 0, 1}, {1, 2, 3}, {3, 4, 5}, {5, 5, 6}}
	shifts14  = [4]uint{2, 4, 6, 0}
)

// sample14 extracts linear sample n from a 14-bit packed stream.
func sample14(data []byte, n int, swap bool) uint32 {
	k := n % 4
	base := (n / 4) * 7
	o := &offsets14[k]
	b0 := byteAt(data, base+o[0], swap)
	b1 := byteAt(data, base+o[1], swap)
	b2 := byteAt(data, base+o[2], swap)
	v := b0<<16 | b1<<8 | b2
	return (v >> shifts14[k]) & 0x3FFF
}

// decode14Rows decodes rows [y0, y1) of a 14-bit stream into img.
func decode14Rows(img *Image, data []byte, swap bool, y0, y1 int) {
	w := img.Width
	for y := y0; y < y1; y++ {
		row := img.Pix[y*w : (y+1)*w]
		n := y * w
		for x := range row {
			row[x] = float32(sample14(data, n+x, swap))
		}
	}
}
