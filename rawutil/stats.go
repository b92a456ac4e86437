package rawutil

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/mrjoshuak/go-rawdev/raw"
)

var (
	// ErrEmptyImage is returned for an image with no samples.
	ErrEmptyImage = errors.New("rawutil: empty image")

	// ErrInvalidQuantile is returned for a quantile outside (0, 1].
	ErrInvalidQuantile = errors.New("rawutil: quantile must be in (0, 1]")

	// ErrFlatImage is returned when the chosen quantile is at or below the
	// black level, so no intensity can lift it to 1.
	ErrFlatImage = errors.New("rawutil: quantile at or below black level")
)

// Stats summarizes the samples of a decoded image.
type Stats struct {
	Count   int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
	P01     float64
	P50     float64
	P99     float64
	Clipped int // samples at the maximum value of the bit depth
}

// ComputeStats returns sample statistics for img.
func ComputeStats(img *raw.Image) (Stats, error) {
	x, err := sortedSamples(img)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		Count: len(x),
		Min:   x[0],
		Max:   x[len(x)-1],
		P01:   stat.Quantile(0.01, stat.Empirical, x, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, x, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, x, nil),
	}
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		s.StdDev = 0
	}

	limit := float64(img.Depth.MaxValue())
	i, _ := slices.BinarySearch(x, limit)
	s.Clipped = len(x) - i
	return s, nil
}

// AutoIntensity returns the intensity that develops the q-quantile sample
// of img to exactly 1 under cal.
func AutoIntensity(img *raw.Image, cal raw.Calibration, q float64) (float32, error) {
	if !(q > 0 && q <= 1) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantile, q)
	}
	if err := cal.Validate(); err != nil {
		return 0, err
	}
	x, err := sortedSamples(img)
	if err != nil {
		return 0, err
	}
	v := stat.Quantile(q, stat.Empirical, x, nil)
	norm := (v - float64(cal.BlackLevel)) / (float64(cal.WhiteLevel) - float64(cal.BlackLevel))
	if norm <= 0 {
		return 0, fmt.Errorf("%w: quantile %v is %v", ErrFlatImage, q, v)
	}
	return float32(1 / norm), nil
}

func sortedSamples(img *raw.Image) ([]float64, error) {
	if img == nil || len(img.Pix) == 0 {
		return nil, ErrEmptyImage
	}
	x := make([]float64, len(img.Pix))
	for i, v := range img.Pix {
		x[i] = float64(v)
	}
	slices.Sort(x)
	return x, nil
}
