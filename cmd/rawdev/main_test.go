package main

import (
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrjoshuak/go-rawdev/exrio"
	"github.com/mrjoshuak/go-rawdev/raw"
	"github.com/mrjoshuak/go-rawdev/rawutil"
)

func TestRamp(t *testing.T) {
	samples := ramp(5, 3, raw.Depth12)
	if samples[0] != 0 {
		t.Errorf("top-left = %d, want 0", samples[0])
	}
	if got := samples[len(samples)-1]; got != 4095 {
		t.Errorf("bottom-right = %d, want 4095", got)
	}
	if samples[1] != samples[5] {
		t.Errorf("ramp is not diagonal: %d vs %d", samples[1], samples[5])
	}
	if got := ramp(1, 1, raw.Depth16); len(got) != 1 || got[0] != 0 {
		t.Errorf("1x1 ramp = %v", got)
	}
}

func TestSynthDevelopStats(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "dump.bin")
	job := filepath.Join(dir, "job.json")

	err := runSynth([]string{"-w", "20", "-h", "10", "-bits", "14", "-swap", "-out", dump, "-meta-out", job})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	if want := raw.RequiredSize(20, 10, raw.Depth14, true); len(data) != want {
		t.Errorf("dump is %d bytes, want %d", len(data), want)
	}
	p, err := rawutil.LoadParams(job)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 20 || p.Height != 10 || p.Bits != 14 || !p.Swap {
		t.Errorf("job = %+v", p)
	}

	exrPath := filepath.Join(dir, "out.exr")
	pngPath := filepath.Join(dir, "out.png")
	err = runDevelop([]string{"-in", dump, "-meta", job, "-flipy=false", "-exr", exrPath, "-exr-compression", "zips", "-exr-float", "-png", pngPath, "-pseudo"})
	if err != nil {
		t.Fatal(err)
	}
	buf, h, err := exrio.ReadFile(exrPath)
	if err != nil {
		t.Fatal(err)
	}
	if h.Width != 20 || h.Height != 10 || h.Compression != exrio.CompressionZIPS || h.PixelType != exrio.PixelTypeFloat {
		t.Errorf("header = %+v", h)
	}
	if r, _, _ := buf.At(0, 0); r != 0 {
		t.Errorf("top-left = %v, want 0", r)
	}
	if r, _, _ := buf.At(19, 9); math.Abs(float64(r)-1) > 1e-6 {
		t.Errorf("bottom-right = %v, want 1", r)
	}
	if _, err := os.Stat(pngPath); err != nil {
		t.Errorf("png not written: %v", err)
	}

	if err := runStats([]string{"-in", dump, "-meta", job}); err != nil {
		t.Errorf("stats: %v", err)
	}
}

func TestFlagsOverrideJobFile(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "job.json")
	if err := os.WriteFile(job, []byte(`{"width": 8, "height": 8, "bits": 12, "intensity": 2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	j := addJobFlags(fs)
	if err := fs.Parse([]string{"-in", "x", "-meta", job, "-bits", "16", "-white", "1000"}); err != nil {
		t.Fatal(err)
	}
	p, err := j.params()
	if err != nil {
		t.Fatal(err)
	}
	if p.Bits != 16 || p.WhiteLevel != 1000 || p.Intensity != 2 || p.Width != 8 || !p.FlipY {
		t.Errorf("params = %+v", p)
	}
}

func TestUsageErrors(t *testing.T) {
	if err := runDevelop([]string{"-in", "x"}); !errors.Is(err, errUsage) {
		t.Errorf("develop without output: error = %v", err)
	}
	if err := runStats(nil); !errors.Is(err, errUsage) {
		t.Errorf("stats without input: error = %v", err)
	}
	if err := runSynth(nil); !errors.Is(err, errUsage) {
		t.Errorf("synth without output: error = %v", err)
	}
	if err := runSynth([]string{"-bits", "10", "-out", filepath.Join(t.TempDir(), "x")}); err == nil {
		t.Error("synth with 10 bits succeeded")
	}
}

func TestFlagErrorsAreUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func([]string) error
		args []string
	}{
		{"develop unknown flag", runDevelop, []string{"-nosuch"}},
		{"develop bad float", runDevelop, []string{"-in", "x", "-png", "y", "-intensity", "bright"}},
		{"stats bad quantile", runStats, []string{"-q", "high"}},
		{"synth bad width", runSynth, []string{"-w", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(tt.args)
			if !errors.Is(err, errUsage) {
				t.Errorf("error = %v, want a usage error", err)
			}
			if got := exitCode(err); got != 2 {
				t.Errorf("exit code = %d, want 2", got)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil); got != 0 {
		t.Errorf("nil: %d", got)
	}
	if got := exitCode(runSynth([]string{"-help"})); got != 2 {
		t.Errorf("-help: %d, want 2", got)
	}
	if got := exitCode(errors.New("disk full")); got != 1 {
		t.Errorf("runtime error: %d, want 1", got)
	}
	err := runStats([]string{"-in", filepath.Join(t.TempDir(), "missing.bin"), "-w", "2", "-h", "2", "-bits", "12"})
	if got := exitCode(err); got != 1 {
		t.Errorf("missing input: exit code %d (%v), want 1", got, err)
	}
}
