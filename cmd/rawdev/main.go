// rawdev decodes packed 12, 14 and 16-bit sensor dumps and develops them
// into viewable images.
//
// Usage:
//
//	rawdev develop -in dump.bin [-meta job.json] [job flags] [output flags]
//	rawdev stats   -in dump.bin [-meta job.json] [job flags] [-q 0.99]
//	rawdev synth   -w 64 -h 48 -bits 14 [-swap] -out dump.bin [-meta-out job.json]
//
// Job flags override the values read from -meta:
//
//	-w, -h        image size in pixels
//	-bits         sample depth (12, 14 or 16)
//	-black        black level (default 0)
//	-white        white level (default full range)
//	-swap         16-bit word swapped input
//	-intensity    develop scale (default 1)
//	-flipy        write rows bottom-up (default true)
//	-gamma        display gamma for PNG output (default 1)
//
// Exit codes:
//
//	0: success
//	1: decode, develop or I/O failure
//	2: usage error
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrjoshuak/go-rawdev/display"
	"github.com/mrjoshuak/go-rawdev/exrio"
	"github.com/mrjoshuak/go-rawdev/raw"
	"github.com/mrjoshuak/go-rawdev/rawutil"
)

var errUsage = errors.New("usage error")

func main() {
	log.SetFlags(0)
	log.SetPrefix("rawdev: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "develop":
		err = runDevelop(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "synth":
		err = runSynth(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Print(err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		return 1
	}
}

// parseFlags parses args into fs. Every parse failure is a usage error;
// the flag package has already printed the details.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: rawdev <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  develop -in dump.bin [-meta job.json] -w W -h H -bits B [-exr out.exr] [-png out.png] [-j2k out.j2k] [-hist out.png]")
	fmt.Fprintln(os.Stderr, "  stats   -in dump.bin [-meta job.json] -w W -h H -bits B [-q 0.99]")
	fmt.Fprintln(os.Stderr, "  synth   -w W -h H -bits B [-swap] -out dump.bin [-meta-out job.json]")
}

// jobFlags are the decode and develop flags shared by develop and stats.
type jobFlags struct {
	fs        *flag.FlagSet
	in        *string
	meta      *string
	width     *int
	height    *int
	bits      *int
	black     *float64
	white     *float64
	swap      *bool
	intensity *float64
	flipY     *bool
	gamma     *float64
}

func addJobFlags(fs *flag.FlagSet) *jobFlags {
	d := rawutil.DefaultParams()
	return &jobFlags{
		fs:        fs,
		in:        fs.String("in", "", "packed sample dump"),
		meta:      fs.String("meta", "", "JSON job file"),
		width:     fs.Int("w", 0, "image width"),
		height:    fs.Int("h", 0, "image height"),
		bits:      fs.Int("bits", 0, "sample depth: 12, 14 or 16"),
		black:     fs.Float64("black", 0, "black level"),
		white:     fs.Float64("white", 0, "white level (0 with -black 0 uses full range)"),
		swap:      fs.Bool("swap", false, "input has swapped 16-bit words"),
		intensity: fs.Float64("intensity", float64(d.Intensity), "develop intensity"),
		flipY:     fs.Bool("flipy", d.FlipY, "write rows bottom-up"),
		gamma:     fs.Float64("gamma", float64(d.Gamma), "display gamma"),
	}
}

// params merges the job file with explicitly set flags.
func (j *jobFlags) params() (*rawutil.Params, error) {
	if *j.in == "" {
		return nil, fmt.Errorf("%w: -in is required", errUsage)
	}
	p := rawutil.DefaultParams()
	if *j.meta != "" {
		f, err := os.Open(*j.meta)
		if err != nil {
			return nil, err
		}
		p, err = rawutil.ReadParams(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", *j.meta, err)
		}
	}
	j.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			p.Width = *j.width
		case "h":
			p.Height = *j.height
		case "bits":
			p.Bits = *j.bits
		case "black":
			p.BlackLevel = float32(*j.black)
		case "white":
			p.WhiteLevel = float32(*j.white)
		case "swap":
			p.Swap = *j.swap
		case "intensity":
			p.Intensity = float32(*j.intensity)
		case "flipy":
			p.FlipY = *j.flipY
		case "gamma":
			p.Gamma = float32(*j.gamma)
		}
	})
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// decode maps the input dump and decodes it with p.
func decode(path string, p *rawutil.Params) (*raw.Image, error) {
	packed, err := rawutil.OpenPacked(path)
	if err != nil {
		return nil, err
	}
	defer packed.Close()
	img, err := p.Decode(packed.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func runDevelop(args []string) error {
	fs := flag.NewFlagSet("develop", flag.ContinueOnError)
	job := addJobFlags(fs)
	auto := fs.Float64("auto", 0, "choose the intensity that maps this quantile to 1 (0 disables)")
	exrPath := fs.String("exr", "", "write OpenEXR")
	exrFloat := fs.Bool("exr-float", false, "store FLOAT instead of HALF pixels")
	exrComp := fs.String("exr-compression", "zip", "OpenEXR compression: none, zips or zip")
	pngPath := fs.String("png", "", "write PNG preview")
	pseudo := fs.Bool("pseudo", false, "pseudo-color PNG preview")
	j2kPath := fs.String("j2k", "", "write a JPEG 2000 archive of the decoded samples (fails unless it decodes back exactly)")
	histPath := fs.String("hist", "", "write sample histogram (format from extension)")
	bins := fs.Int("bins", 256, "histogram bins")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *exrPath == "" && *pngPath == "" && *j2kPath == "" && *histPath == "" {
		return fmt.Errorf("%w: no output requested", errUsage)
	}
	comp, err := exrio.ParseCompression(*exrComp)
	if err != nil {
		return err
	}
	p, err := job.params()
	if err != nil {
		return err
	}
	img, err := decode(*job.in, p)
	if err != nil {
		return err
	}

	if *auto > 0 {
		intensity, err := rawutil.AutoIntensity(img, p.Calibration(), *auto)
		if err != nil {
			return err
		}
		p.Intensity = intensity
		log.Printf("auto intensity %.4g (q=%g)", intensity, *auto)
	}

	buf, err := raw.Develop(img, p.Calibration(), p.DisplayParams())
	if err != nil {
		return err
	}

	if *exrPath != "" {
		opts := exrio.DefaultOptions()
		opts.Compression = comp
		if *exrFloat {
			opts.PixelType = exrio.PixelTypeFloat
		}
		opts.Comments = describe(p)
		if err := exrio.WriteFile(*exrPath, buf, opts); err != nil {
			return err
		}
		log.Printf("wrote %s", *exrPath)
	}
	if *pngPath != "" {
		opts := &display.Options{Gamma: p.Gamma, PseudoColor: *pseudo}
		if err := display.SavePNG(*pngPath, buf, opts); err != nil {
			return err
		}
		log.Printf("wrote %s", *pngPath)
	}
	if *j2kPath != "" {
		if err := writeJPEG2000(*j2kPath, img); err != nil {
			return err
		}
		log.Printf("wrote %s", *j2kPath)
	}
	if *histPath != "" {
		if err := rawutil.SaveHistogram(*histPath, img, *bins); err != nil {
			return err
		}
		log.Printf("wrote %s", *histPath)
	}
	return nil
}

func writeJPEG2000(path string, img *raw.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rawutil.EncodeJPEG2000(f, img, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func describe(p *rawutil.Params) string {
	cal := p.Calibration()
	return fmt.Sprintf("rawdev: %dx%d %d-bit swap=%t black=%g white=%g intensity=%g flipy=%t",
		p.Width, p.Height, p.Bits, p.Swap, cal.BlackLevel, cal.WhiteLevel, p.Intensity, p.FlipY)
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	job := addJobFlags(fs)
	q := fs.Float64("q", 0.99, "quantile for the suggested intensity")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	p, err := job.params()
	if err != nil {
		return err
	}
	img, err := decode(*job.in, p)
	if err != nil {
		return err
	}
	s, err := rawutil.ComputeStats(img)
	if err != nil {
		return err
	}

	fmt.Printf("size:     %dx%d %v\n", img.Width, img.Height, img.Depth)
	fmt.Printf("samples:  %d\n", s.Count)
	fmt.Printf("min/max:  %g / %g\n", s.Min, s.Max)
	fmt.Printf("mean:     %.3f (stddev %.3f)\n", s.Mean, s.StdDev)
	fmt.Printf("p01/p50/p99: %g / %g / %g\n", s.P01, s.P50, s.P99)
	fmt.Printf("clipped:  %d (%.3f%%)\n", s.Clipped, 100*float64(s.Clipped)/float64(s.Count))
	if intensity, err := rawutil.AutoIntensity(img, p.Calibration(), *q); err == nil {
		fmt.Printf("intensity for q=%g: %.4g\n", *q, intensity)
	} else {
		fmt.Printf("intensity for q=%g: n/a (%v)\n", *q, err)
	}
	return nil
}

func runSynth(args []string) error {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	width := fs.Int("w", 64, "image width")
	height := fs.Int("h", 48, "image height")
	bits := fs.Int("bits", 14, "sample depth: 12, 14 or 16")
	swap := fs.Bool("swap", false, "swap 16-bit words")
	out := fs.String("out", "", "output dump")
	metaOut := fs.String("meta-out", "", "write a matching JSON job file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("%w: -out is required", errUsage)
	}
	depth := raw.BitDepth(*bits)
	samples := ramp(*width, *height, depth)
	data, err := raw.Pack(samples, *width, *height, depth, *swap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	log.Printf("wrote %s (%d bytes)", *out, len(data))

	if *metaOut != "" {
		p := rawutil.DefaultParams()
		p.Width, p.Height, p.Bits, p.Swap = *width, *height, *bits, *swap
		enc, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*metaOut, append(enc, '\n'), 0o644); err != nil {
			return err
		}
		log.Printf("wrote %s", *metaOut)
	}
	return nil
}

// ramp returns a diagonal gradient from 0 at the top-left corner to the
// maximum sample value at the bottom-right.
func ramp(width, height int, depth raw.BitDepth) []uint16 {
	if width <= 0 || height <= 0 || !depth.Valid() {
		return nil
	}
	samples := make([]uint16, width*height)
	span := max(width+height-2, 1)
	limit := uint64(depth.MaxValue())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			samples[y*width+x] = uint16(uint64(x+y) * limit / uint64(span))
		}
	}
	return samples
}
