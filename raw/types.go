// Package raw decodes packed image sensor samples into linear floating-point
// images and develops them into display buffers.
//
// Sensor data arrives as a stream of 12, 14 or 16-bit unsigned samples packed
// without padding. Decode unpacks the stream, optionally correcting a 16-bit
// word swap, into an Image whose values lie in [0, 2^depth-1]. Develop maps
// those linear values through a black/white level calibration and an
// intensity scalar into an RGB DisplayBuffer.
//
// Both stages are pure functions of their inputs. Work is partitioned by row
// across goroutines; see ParallelConfig.
package raw

import (
	"fmt"
	"image"
	"math"
)

// BitDepth is the width in bits of one packed sample.
type BitDepth int

// Supported bit depths.
const (
	Depth12 BitDepth = 12
	Depth14 BitDepth = 14
	Depth16 BitDepth = 16
)

// Valid returns true if d is one of the supported depths.
func (d BitDepth) Valid() bool {
	switch d {
	case Depth12, Depth14, Depth16:
		return true
	}
	return false
}

// Mask returns the bit mask covering one sample.
func (d BitDepth) Mask() uint32 {
	return 1<<uint(d) - 1
}

// MaxValue returns the largest sample value representable at depth d.
func (d BitDepth) MaxValue() uint32 {
	return d.Mask()
}

// String returns a string representation of the bit depth.
func (d BitDepth) String() string {
	return fmt.Sprintf("%d-bit", int(d))
}

// PackedSize returns the number of bytes needed to hold width*height samples
// packed at depth d.
func PackedSize(width, height int, d BitDepth) int {
	bits := width * height * int(d)
	return (bits + 7) / 8
}

// RequiredSize returns the minimum buffer length Decode accepts. Swapped
// streams are addressed in whole 16-bit words, so the size is rounded up to
// an even number of bytes when swap is set.
func RequiredSize(width, height int, d BitDepth, swap bool) int {
	n := PackedSize(width, height, d)
	if swap && n%2 != 0 {
		n++
	}
	return n
}

// Image is a decoded single-channel linear image.
// Pix holds Width*Height samples in row-major order.
type Image struct {
	Width  int
	Height int
	Depth  BitDepth
	Pix    []float32
}

// NewImage allocates an image of the given size.
func NewImage(width, height int, d BitDepth) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Depth:  d,
		Pix:    make([]float32, width*height),
	}
}

// Bounds returns the image rectangle.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At returns the sample at (x, y).
func (img *Image) At(x, y int) float32 {
	return img.Pix[y*img.Width+x]
}

// Row returns row y as a sub-slice of Pix.
func (img *Image) Row(y int) []float32 {
	start := y * img.Width
	return img.Pix[start : start+img.Width]
}

// Calibration holds the sensor levels mapped to display black and white.
type Calibration struct {
	BlackLevel float32
	WhiteLevel float32
}

// Validate checks that the white level is strictly above the black level.
func (c Calibration) Validate() error {
	if !finite(c.BlackLevel) || !finite(c.WhiteLevel) {
		return fmt.Errorf("%w: non-finite level (black=%v, white=%v)", ErrInvalidCalibration, c.BlackLevel, c.WhiteLevel)
	}
	if c.WhiteLevel <= c.BlackLevel {
		return fmt.Errorf("%w: white level %v <= black level %v", ErrInvalidCalibration, c.WhiteLevel, c.BlackLevel)
	}
	return nil
}

// FullRange returns the calibration spanning every value at depth d.
func FullRange(d BitDepth) Calibration {
	return Calibration{BlackLevel: 0, WhiteLevel: float32(d.MaxValue())}
}

// DisplayParams are the caller-controlled develop settings. Changing them
// requires a new Develop call but never a new Decode.
type DisplayParams struct {
	Intensity float32
	FlipY     bool
}

// DefaultDisplayParams returns unit intensity without flipping.
func DefaultDisplayParams() DisplayParams {
	return DisplayParams{Intensity: 1}
}

// Validate rejects negative or non-finite intensities.
func (p DisplayParams) Validate() error {
	if !finite(p.Intensity) || p.Intensity < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidIntensity, p.Intensity)
	}
	return nil
}

// DisplayBuffer is a developed RGB image. Pix holds Width*Height triples in
// row-major order. Values are not clamped.
type DisplayBuffer struct {
	Width  int
	Height int
	Pix    []float32
}

// NewDisplayBuffer allocates a display buffer of the given size.
func NewDisplayBuffer(width, height int) *DisplayBuffer {
	return &DisplayBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// Bounds returns the buffer rectangle.
func (b *DisplayBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// PixOffset returns the index of the red component of pixel (x, y).
func (b *DisplayBuffer) PixOffset(x, y int) int {
	return (y*b.Width + x) * 3
}

// At returns the RGB triple at (x, y).
func (b *DisplayBuffer) At(x, y int) (r, g, bl float32) {
	i := b.PixOffset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Row returns the 3*Width components of row y.
func (b *DisplayBuffer) Row(y int) []float32 {
	start := y * b.Width * 3
	return b.Pix[start : start+b.Width*3]
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
