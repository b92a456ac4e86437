package compression

// OpenEXR's ZIP codec reorders a chunk before deflating it: the bytes at
// even positions go to the first half and odd positions to the second half,
// then every byte is replaced by its difference from the previous byte,
// biased by 128.

// Interleave splits src into even-indexed bytes followed by odd-indexed
// bytes, writing the result to dst.
func Interleave(dst, src []byte) {
	half := (len(src) + 1) / 2
	for i := 0; i < half; i++ {
		dst[i] = src[2*i]
	}
	for i := 0; i < len(src)-half; i++ {
		dst[half+i] = src[2*i+1]
	}
}

// Deinterleave reverses Interleave.
func Deinterleave(dst, src []byte) {
	half := (len(src) + 1) / 2
	for i := 0; i < half; i++ {
		dst[2*i] = src[i]
	}
	for i := 0; i < len(src)-half; i++ {
		dst[2*i+1] = src[half+i]
	}
}

// EncodePredictor applies the biased delta predictor in place.
func EncodePredictor(data []byte) {
	if len(data) < 2 {
		return
	}
	prev := data[0]
	for i := 1; i < len(data); i++ {
		cur := data[i]
		data[i] = cur - prev + 128
		prev = cur
	}
}

// DecodePredictor reverses EncodePredictor in place.
func DecodePredictor(data []byte) {
	for i := 1; i < len(data); i++ {
		data[i] = data[i-1] + data[i] - 128
	}
}
