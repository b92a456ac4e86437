package raw

import (
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func withParallelConfig(t *testing.T, config ParallelConfig) {
	t.Helper()
	prev := GetParallelConfig()
	SetParallelConfig(config)
	t.Cleanup(func() { SetParallelConfig(prev) })
}

func TestParallelRowsCoversEveryRowOnce(t *testing.T) {
	configs := []ParallelConfig{
		{NumWorkers: 1, GrainSize: 1},
		{NumWorkers: 3, GrainSize: 1},
		{NumWorkers: 8, GrainSize: 4},
		{NumWorkers: 64, GrainSize: 1},
		DefaultParallelConfig(),
	}
	for _, config := range configs {
		withParallelConfig(t, config)
		for _, height := range []int{1, 2, 7, 16, 33, 100, 1000} {
			hits := make([]int32, height)
			ParallelRows(height, func(y0, y1 int) {
				if y0 >= y1 {
					t.Errorf("empty range [%d, %d)", y0, y1)
				}
				for y := y0; y < y1; y++ {
					atomic.AddInt32(&hits[y], 1)
				}
			})
			for y, n := range hits {
				if n != 1 {
					t.Fatalf("config %+v height %d: row %d visited %d times", config, height, y, n)
				}
			}
		}
	}
}

func TestParallelRowsEmpty(t *testing.T) {
	called := false
	ParallelRows(0, func(y0, y1 int) { called = true })
	if called {
		t.Error("ParallelRows(0) invoked fn")
	}
}

func TestParallelFor(t *testing.T) {
	withParallelConfig(t, ParallelConfig{NumWorkers: 4, GrainSize: 1})
	var count int64
	ParallelFor(1000, func(i int) {
		atomic.AddInt64(&count, 1)
	})
	if count != 1000 {
		t.Errorf("ParallelFor processed %d items, want 1000", count)
	}
}

// TestParallelMatchesSerial checks that row partitioning does not change
// results: every worker derives its group offsets from absolute indices.
func TestParallelMatchesSerial(t *testing.T) {
	const w, h = 37, 61
	for _, depth := range []BitDepth{Depth12, Depth14, Depth16} {
		for _, swap := range []bool{false, true} {
			data := make([]byte, RequiredSize(w, h, depth, swap))
			for i := range data {
				data[i] = byte(i*131 + 7)
			}

			withParallelConfig(t, ParallelConfig{NumWorkers: 1})
			serial, err := Decode(data, w, h, depth, WithSwap(swap))
			if err != nil {
				t.Fatal(err)
			}
			serialBuf, err := Develop(serial, FullRange(depth), DisplayParams{Intensity: 1.25, FlipY: true})
			if err != nil {
				t.Fatal(err)
			}

			SetParallelConfig(ParallelConfig{NumWorkers: 7, GrainSize: 1})
			parallel, err := Decode(data, w, h, depth, WithSwap(swap))
			if err != nil {
				t.Fatal(err)
			}
			parallelBuf, err := Develop(parallel, FullRange(depth), DisplayParams{Intensity: 1.25, FlipY: true})
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(serial, parallel); diff != "" {
				t.Errorf("%v swap=%v: decode differs:\n%s", depth, swap, diff)
			}
			if diff := cmp.Diff(serialBuf, parallelBuf); diff != "" {
				t.Errorf("%v swap=%v: develop differs:\n%s", depth, swap, diff)
			}
		}
	}
}
