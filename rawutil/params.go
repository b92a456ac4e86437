// Package rawutil provides file-level helpers around package raw: job
// parameter files, memory-mapped packed dumps, sample statistics,
// histograms and lossless JPEG 2000 archives of decoded samples.
package rawutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mrjoshuak/go-rawdev/raw"
)

// ErrInvalidParams is returned when a job file fails validation.
var ErrInvalidParams = errors.New("rawutil: invalid parameters")

// Params describes how to decode and develop one packed dump. It is the
// JSON job file a loader writes next to the sample data.
type Params struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Bits       int     `json:"bits"`

	// BlackLevel and WhiteLevel calibrate the samples. When both are zero,
	// including when both are omitted from the job file, the full range
	// of Bits is used: black 0 and white 2^Bits-1. A sensor whose white
	// level really is 0 cannot be described.
	BlackLevel float32 `json:"black_level"`
	WhiteLevel float32 `json:"white_level"`

	Swap bool `json:"swap"`
	Intensity float32 `json:"intensity"`
	FlipY     bool    `json:"flip_y"`
	Gamma     float32 `json:"gamma"`
}

// DefaultParams returns the viewer defaults: unit intensity and gamma,
// bottom-up output rows.
func DefaultParams() *Params {
	return &Params{
		Intensity: 1,
		FlipY:     true,
		Gamma:     1,
	}
}

// ReadParams decodes a job file. Fields missing from the file keep their
// DefaultParams values; unknown fields are rejected.
func ReadParams(r io.Reader) (*Params, error) {
	p := DefaultParams()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("rawutil: decode params: %w", err)
	}
	return p, nil
}

// LoadParams reads and validates the named job file.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ReadParams(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Depth returns the sample bit depth.
func (p *Params) Depth() raw.BitDepth {
	return raw.BitDepth(p.Bits)
}

// Calibration returns the black and white levels. When both are zero the
// full range of the bit depth is used.
func (p *Params) Calibration() raw.Calibration {
	if p.BlackLevel == 0 && p.WhiteLevel == 0 {
		return raw.FullRange(p.Depth())
	}
	return raw.Calibration{BlackLevel: p.BlackLevel, WhiteLevel: p.WhiteLevel}
}

// DisplayParams returns the develop settings.
func (p *Params) DisplayParams() raw.DisplayParams {
	return raw.DisplayParams{Intensity: p.Intensity, FlipY: p.FlipY}
}

// Validate checks every field.
func (p *Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if !p.Depth().Valid() {
		return fmt.Errorf("%w: %w: %d", ErrInvalidParams, raw.ErrUnsupportedBitDepth, p.Bits)
	}
	if err := p.Calibration().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err := p.DisplayParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	g := float64(p.Gamma)
	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
		return fmt.Errorf("%w: gamma %v", ErrInvalidParams, p.Gamma)
	}
	return nil
}

// Decode decodes data with the job's geometry and swap setting.
func (p *Params) Decode(data []byte) (*raw.Image, error) {
	return raw.Decode(data, p.Width, p.Height, p.Depth(), raw.WithSwap(p.Swap))
}
