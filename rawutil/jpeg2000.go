package rawutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/mrjoshuak/go-jpeg2000"

	"github.com/mrjoshuak/go-rawdev/raw"
)

// ErrNotLossless is returned by EncodeJPEG2000 when the codec does not
// reproduce every sample of the image. Nothing is written in that case.
var ErrNotLossless = errors.New("rawutil: jpeg2000 codestream does not reproduce the samples")

// Codec entry points, replaced in tests.
var (
	j2kEncode = jpeg2000.Encode
	j2kDecode = jpeg2000.Decode
)

// JPEG2000Options configures EncodeJPEG2000.
type JPEG2000Options struct {
	// HighThroughput selects the HTJ2K block coder.
	HighThroughput bool

	// NumResolutions is the number of wavelet resolutions (levels + 1).
	// Zero uses 6.
	NumResolutions int
}

// Gray16 returns the samples of img as a 16-bit gray image. Samples are
// rounded and clamped to [0, 65535].
func Gray16(img *raw.Image) *image.Gray16 {
	out := image.NewGray16(img.Bounds())
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		dst := out.Pix[y*out.Stride:]
		for x, v := range row {
			s := uint16(math.Round(float64(min(max(v, 0), 65535))))
			dst[2*x] = byte(s >> 8)
			dst[2*x+1] = byte(s)
		}
	}
	return out
}

// EncodeJPEG2000 writes img as a single-component J2K codestream using the
// reversible transform. The codestream is decoded again before anything
// reaches w, and ErrNotLossless is returned unless every sample of
// Gray16(img) comes back unchanged. A nil opts uses the defaults.
func EncodeJPEG2000(w io.Writer, img *raw.Image, opts *JPEG2000Options) error {
	if img == nil || len(img.Pix) == 0 {
		return ErrEmptyImage
	}
	if opts == nil {
		opts = &JPEG2000Options{}
	}
	levels := opts.NumResolutions
	if levels == 0 {
		levels = 6
	}

	jopts := &jpeg2000.Options{
		Format:         jpeg2000.FormatJ2K,
		Lossless:       true,
		HighThroughput: opts.HighThroughput,
		NumResolutions: levels,
	}
	src := Gray16(img)
	var cs bytes.Buffer
	if err := j2kEncode(&cs, src, jopts); err != nil {
		return fmt.Errorf("rawutil: jpeg2000 encode failed: %w", err)
	}
	if err := verifyJPEG2000(cs.Bytes(), src); err != nil {
		return err
	}
	_, err := w.Write(cs.Bytes())
	return err
}

// verifyJPEG2000 decodes cs and compares it sample by sample with want.
func verifyJPEG2000(cs []byte, want *image.Gray16) error {
	got, err := j2kDecode(bytes.NewReader(cs))
	if err != nil {
		return fmt.Errorf("rawutil: jpeg2000 verify failed: %w", err)
	}
	wb, gb := want.Bounds(), got.Bounds()
	if wb.Dx() != gb.Dx() || wb.Dy() != gb.Dy() {
		return fmt.Errorf("%w: decoded %dx%d, want %dx%d", ErrNotLossless, gb.Dx(), gb.Dy(), wb.Dx(), wb.Dy())
	}
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			g := gray16At(got, gb.Min.X+x, gb.Min.Y+y)
			if v := want.Gray16At(x, y).Y; g != v {
				return fmt.Errorf("%w: sample (%d,%d) is %d, want %d", ErrNotLossless, x, y, g, v)
			}
		}
	}
	return nil
}

func gray16At(src image.Image, x, y int) uint16 {
	if g, ok := src.(*image.Gray16); ok {
		return g.Gray16At(x, y).Y
	}
	return color.Gray16Model.Convert(src.At(x, y)).(color.Gray16).Y
}

// DecodeJPEG2000 reads a codestream written by EncodeJPEG2000 back into an
// image of the given depth.
func DecodeJPEG2000(r io.Reader, depth raw.BitDepth) (*raw.Image, error) {
	if !depth.Valid() {
		return nil, fmt.Errorf("%w: %d", raw.ErrUnsupportedBitDepth, int(depth))
	}
	src, err := j2kDecode(r)
	if err != nil {
		return nil, fmt.Errorf("rawutil: jpeg2000 decode failed: %w", err)
	}

	b := src.Bounds()
	img := raw.NewImage(b.Dx(), b.Dy(), depth)
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		for x := range row {
			row[x] = float32(gray16At(src, b.Min.X+x, b.Min.Y+y))
		}
	}
	return img, nil
}
