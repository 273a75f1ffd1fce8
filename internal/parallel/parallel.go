// Package parallel splits independent loop iterations across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Upper bound on goroutines per loop.
	MinWork    int  // Minimum total work (items * cost) worth spreading out.
}

// DefaultConfig returns defaults based on GOMAXPROCS.
func DefaultConfig() Config {
	n := runtime.GOMAXPROCS(0)
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinWork:    1 << 14,
	}
}

// Sequential returns a Config that runs every loop on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1}
}

// For executes f(i) for i in [0, n), where each call costs roughly cost
// units of work. Iterations are split into contiguous chunks, one per
// worker; f must only write state owned by iteration i.
//
// Falls back to sequential execution if parallelism is disabled or the
// total work is below cfg.MinWork.
func For(n, cost int, f func(i int), cfg Config) {
	workers := min(cfg.NumWorkers, n)
	if !cfg.Enabled || workers <= 1 || n*cost < cfg.MinWork {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
