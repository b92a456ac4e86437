// Package display turns developed buffers into viewable 8-bit images.
//
// Each component is raised to a gamma exponent and clamped to [0, 1], then
// quantized. An optional pseudo-color mode maps the luminance onto a
// blue-cyan-green-yellow-red ramp, which makes sensor noise and clipping
// easier to see than a gray ramp.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/mrjoshuak/go-rawdev/raw"
)

// ErrInvalidGamma is returned for a zero, negative or non-finite gamma.
var ErrInvalidGamma = errors.New("display: invalid gamma")

// Options configures Present.
type Options struct {
	// Gamma is the exponent applied to each component before clamping.
	Gamma float32

	// PseudoColor replaces gray output with a heat map of the luminance.
	PseudoColor bool
}

// DefaultOptions returns gamma 1 without pseudo-color.
func DefaultOptions() *Options {
	return &Options{Gamma: 1}
}

// Validate checks the gamma exponent.
func (o *Options) Validate() error {
	g := float64(o.Gamma)
	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidGamma, o.Gamma)
	}
	return nil
}

// Present converts buf to an opaque NRGBA image. A nil opts uses
// DefaultOptions.
func Present(buf *raw.DisplayBuffer, opts *Options) (*image.NRGBA, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, raw.ErrInvalidDimensions
	}
	if len(buf.Pix) != buf.Width*buf.Height*3 {
		return nil, fmt.Errorf("%w: %d components for %dx%d", raw.ErrSizeMismatch, len(buf.Pix), buf.Width, buf.Height)
	}

	img := image.NewNRGBA(buf.Bounds())
	gamma := float64(opts.Gamma)
	raw.ParallelRows(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			src := buf.Row(y)
			dst := img.Pix[y*img.Stride : y*img.Stride+buf.Width*4]
			for x := 0; x < buf.Width; x++ {
				r := tone(src[x*3], gamma)
				g := tone(src[x*3+1], gamma)
				b := tone(src[x*3+2], gamma)
				if opts.PseudoColor {
					r, g, b = PseudoColor((r + g + b) / 3)
				}
				d := dst[x*4 : x*4+4 : x*4+4]
				d[0] = quantize(r)
				d[1] = quantize(g)
				d[2] = quantize(b)
				d[3] = 0xFF
			}
		}
	})
	return img, nil
}

// WritePNG presents buf and encodes it as PNG.
func WritePNG(w io.Writer, buf *raw.DisplayBuffer, opts *Options) error {
	img, err := Present(buf, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes buf to the named PNG file.
func SavePNG(path string, buf *raw.DisplayBuffer, opts *Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, buf, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// tone applies gamma and clamps to [0, 1]. NaN maps to 0.
func tone(v float32, gamma float64) float32 {
	if !(v > 0) {
		return 0
	}
	if gamma != 1 {
		v = float32(math.Pow(float64(v), gamma))
	}
	return min(v, 1)
}

func quantize(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}

// PseudoColor maps v in [0, 1] to a heat map color: blue at 0, cyan at
// 0.25, green at 0.5, yellow at 0.75 and red at 1.
func PseudoColor(v float32) (r, g, b float32) {
	switch {
	case v <= 0.5:
		r = 0
	case v < 0.75:
		r = (v - 0.5) / 0.25
	default:
		r = 1
	}
	switch {
	case v <= 0.25:
		g = v / 0.25
	case v < 0.75:
		g = 1
	default:
		g = 1 - (v-0.75)/0.25
	}
	switch {
	case v <= 0.25:
		b = 1
	case v < 0.5:
		b = 1 - (v-0.25)/0.25
	default:
		b = 0
	}
	return clamp01(r), clamp01(g), clamp01(b)
}
