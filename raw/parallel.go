package raw

import (
	"runtime"
	"sync"
)

// ParallelConfig configures how decode and develop split rows across
// goroutines.
type ParallelConfig struct {
	// NumWorkers is the number of worker goroutines. 0 means runtime.GOMAXPROCS(0).
	NumWorkers int

	// GrainSize is the minimum number of rows handed to one worker.
	// Images with fewer than GrainSize*2 rows are processed inline.
	GrainSize int
}

// DefaultParallelConfig returns the default parallel configuration.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		NumWorkers: 0,
		GrainSize:  16,
	}
}

var (
	parallelConfig   = DefaultParallelConfig()
	parallelConfigMu sync.RWMutex
)

// SetParallelConfig sets the package-wide parallel configuration.
func SetParallelConfig(config ParallelConfig) {
	parallelConfigMu.Lock()
	defer parallelConfigMu.Unlock()
	parallelConfig = config
}

// GetParallelConfig returns the current parallel configuration.
func GetParallelConfig() ParallelConfig {
	parallelConfigMu.RLock()
	defer parallelConfigMu.RUnlock()
	return parallelConfig
}

// effectiveWorkers returns the number of workers to use.
func effectiveWorkers(config ParallelConfig) int {
	if config.NumWorkers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return config.NumWorkers
}

// ParallelRows calls fn with disjoint, contiguous row ranges [y0, y1) that
// together cover [0, height). It returns once every range has been
// processed. fn must only write output belonging to its own rows.
func ParallelRows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	config := GetParallelConfig()
	grain := config.GrainSize
	if grain < 1 {
		grain = 1
	}

	numWorkers := effectiveWorkers(config)
	if maxWorkers := height / grain; numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}
	if numWorkers <= 1 {
		fn(0, height)
		return
	}

	var wg sync.WaitGroup
	chunkSize := (height + numWorkers - 1) / numWorkers

	for start := 0; start < height; start += chunkSize {
		end := start + chunkSize
		if end > height {
			end = height
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelFor runs fn(i) for i in [0, n) using the same partitioning as
// ParallelRows.
func ParallelFor(n int, fn func(i int)) {
	ParallelRows(n, func(s, e int) {
		for i := s; i < e; i++ {
			fn(i)
		}
	})
}
