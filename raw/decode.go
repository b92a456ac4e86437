package raw

import "fmt"

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	swap bool
}

// WithSwap selects whether the packed stream has its 16-bit words
// byte-swapped relative to the expected order.
func WithSwap(swap bool) DecodeOption {
	return func(o *decodeOptions) {
		o.swap = swap
	}
}

// Decode unpacks width*height samples of the given depth from data into a
// new Image. data is only read.
func Decode(data []byte, width, height int, depth BitDepth, opts ...DecodeOption) (*Image, error) {
	if err := checkDecode(data, width, height, depth, opts); err != nil {
		return nil, err
	}
	img := NewImage(width, height, depth)
	decode(img, data, opts)
	return img, nil
}

// DecodeInto is like Decode but writes into dst, reusing dst.Pix when it
// has enough capacity.
func DecodeInto(dst *Image, data []byte, width, height int, depth BitDepth, opts ...DecodeOption) error {
	if err := checkDecode(data, width, height, depth, opts); err != nil {
		return err
	}
	n := width * height
	if cap(dst.Pix) < n {
		dst.Pix = make([]float32, n)
	}
	dst.Pix = dst.Pix[:n]
	dst.Width, dst.Height, dst.Depth = width, height, depth
	decode(dst, data, opts)
	return nil
}

func resolve(opts []DecodeOption) decodeOptions {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func checkDecode(data []byte, width, height int, depth BitDepth, opts []DecodeOption) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if !depth.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, int(depth))
	}
	o := resolve(opts)
	if need := RequiredSize(width, height, depth, o.swap); len(data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d for %dx%d at %v",
			ErrBufferTooSmall, len(data), need, width, height, depth)
	}
	return nil
}

// decode dispatches on depth. Arguments are already validated.
func decode(img *Image, data []byte, opts []DecodeOption) {
	o := resolve(opts)

	var rows func(img *Image, data []byte, swap bool, y0, y1 int)
	switch img.Depth {
	case Depth12:
		rows = decode12Rows
	case Depth14:
		rows = decode14Rows
	case Depth16:
		rows = decode16Rows
	}

	ParallelRows(img.Height, func(y0, y1 int) {
		rows(img, data, o.swap, y0, y1)
	})
}

// Sample returns linear sample n of a packed stream without decoding the
// whole image.
func Sample(data []byte, n int, depth BitDepth, swap bool) (uint32, error) {
	if !depth.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, int(depth))
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: sample index %d", ErrInvalidDimensions, n)
	}
	if need := RequiredSize(n+1, 1, depth, swap); len(data) < need {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(data), need)
	}
	switch depth {
	case Depth12:
		return sample12(data, n, swap), nil
	case Depth14:
		return sample14(data, n, swap), nil
	default:
		return sample16(data, n, swap), nil
	}
}
