package raw

import "fmt"

// Develop maps the linear samples of img into a new RGB display buffer:
//
//	v = (sample - black) * intensity / (white - black)
//
// The value is replicated across the three channels. With FlipY set, source
// row y is written to output row Height-1-y. Values are not clamped.
func Develop(img *Image, cal Calibration, params DisplayParams) (*DisplayBuffer, error) {
	if err := checkDevelop(img, cal, params); err != nil {
		return nil, err
	}
	dst := NewDisplayBuffer(img.Width, img.Height)
	develop(dst, img, cal, params)
	return dst, nil
}

// DevelopInto regenerates dst in full from img. dst is resized when its
// dimensions differ from img.
func DevelopInto(dst *DisplayBuffer, img *Image, cal Calibration, params DisplayParams) error {
	if err := checkDevelop(img, cal, params); err != nil {
		return err
	}
	n := img.Width * img.Height * 3
	if cap(dst.Pix) < n {
		dst.Pix = make([]float32, n)
	}
	dst.Pix = dst.Pix[:n]
	dst.Width, dst.Height = img.Width, img.Height
	develop(dst, img, cal, params)
	return nil
}

func checkDevelop(img *Image, cal Calibration, params DisplayParams) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return ErrInvalidDimensions
	}
	if len(img.Pix) != img.Width*img.Height {
		return fmt.Errorf("%w: %d samples for %dx%d", ErrSizeMismatch, len(img.Pix), img.Width, img.Height)
	}
	if err := cal.Validate(); err != nil {
		return err
	}
	return params.Validate()
}

func develop(dst *DisplayBuffer, img *Image, cal Calibration, params DisplayParams) {
	invScale := 1 / (cal.WhiteLevel - cal.BlackLevel)
	black := cal.BlackLevel
	intensity := params.Intensity
	h := img.Height

	ParallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			Y := y
			if params.FlipY {
				Y = h - 1 - y
			}
			src := img.Row(y)
			out := dst.Row(Y)
			for x, s := range src {
				v := intensity * ((s - black) * invScale)
				out[3*x] = v
				out[3*x+1] = v
				out[3*x+2] = v
			}
		}
	})
}

// Developer binds a decoded image to its calibration so the display can be
// regenerated whenever DisplayParams change.
type Developer struct {
	img *Image
	cal Calibration
}

// NewDeveloper validates cal once and returns a Developer for img.
func NewDeveloper(img *Image, cal Calibration) (*Developer, error) {
	if img == nil {
		return nil, ErrInvalidDimensions
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &Developer{img: img, cal: cal}, nil
}

// Image returns the decoded source image.
func (d *Developer) Image() *Image {
	return d.img
}

// Calibration returns the bound calibration levels.
func (d *Developer) Calibration() Calibration {
	return d.cal
}

// Develop returns a new display buffer for params.
func (d *Developer) Develop(params DisplayParams) (*DisplayBuffer, error) {
	return Develop(d.img, d.cal, params)
}

// DevelopInto regenerates dst for params.
func (d *Developer) DevelopInto(dst *DisplayBuffer, params DisplayParams) error {
	return DevelopInto(dst, d.img, d.cal, params)
}
