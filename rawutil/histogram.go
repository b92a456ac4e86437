package rawutil

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mrjoshuak/go-rawdev/raw"
)

// Histogram plot size.
const (
	histWidth  = 8 * vg.Inch
	histHeight = 4 * vg.Inch
)

// HistogramPlot builds a histogram of the samples of img with the given
// number of bins.
func HistogramPlot(img *raw.Image, bins int) (*plot.Plot, error) {
	if img == nil || len(img.Pix) == 0 {
		return nil, ErrEmptyImage
	}
	if bins <= 0 {
		return nil, fmt.Errorf("rawutil: invalid bin count %d", bins)
	}

	values := make(plotter.Values, len(img.Pix))
	for i, v := range img.Pix {
		values[i] = float64(v)
	}
	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%dx%d %v samples", img.Width, img.Height, img.Depth)
	p.X.Label.Text = "Sample value"
	p.Y.Label.Text = "Count"
	p.X.Min = 0
	p.X.Max = float64(img.Depth.MaxValue())
	p.Add(h)
	return p, nil
}

// WriteHistogram renders the histogram in format ("png", "svg", "pdf", ...).
func WriteHistogram(w io.Writer, img *raw.Image, bins int, format string) error {
	p, err := HistogramPlot(img, bins)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(histWidth, histHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveHistogram writes the histogram to path; the format follows the
// file extension.
func SaveHistogram(path string, img *raw.Image, bins int) error {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		return fmt.Errorf("rawutil: %s: missing image extension", path)
	}
	p, err := HistogramPlot(img, bins)
	if err != nil {
		return err
	}
	return p.Save(histWidth, histHeight, path)
}
