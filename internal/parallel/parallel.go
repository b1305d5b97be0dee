// Package parallel provides chunked parallel loops and reductions.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Chunk is a half-open index range [Lo, Hi).
type Chunk struct {
	Lo, Hi int
}

// Chunks partitions [0, n) the way For and the reductions do. The partition
// depends only on n and cfg.
func Chunks(n int, cfg Config) []Chunk {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		return []Chunk{{0, n}}
	}

	size := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	chunks := make([]Chunk, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		chunks = append(chunks, Chunk{lo, min(lo+size, n)})
	}
	return chunks
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	chunks := Chunks(n, cfg)
	if len(chunks) <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(c Chunk) {
			defer wg.Done()
			for i := c.Lo; i < c.Hi; i++ {
				f(i)
			}
		}(c)
	}
	wg.Wait()
}

// Reduce sums partial(lo, hi) over the chunks of [0, n). Partials are added in
// the order the workers finish, so floating-point results may differ between
// runs.
func Reduce(n int, partial func(lo, hi int) float64, cfg Config) float64 {
	chunks := Chunks(n, cfg)
	if len(chunks) == 0 {
		return 0
	}
	if len(chunks) == 1 {
		return partial(0, n)
	}

	results := make(chan float64, len(chunks))
	for _, c := range chunks {
		go func(c Chunk) {
			results <- partial(c.Lo, c.Hi)
		}(c)
	}

	var total float64
	for range chunks {
		total += <-results
	}
	return total
}

// ReduceOrdered is Reduce with partials combined in chunk order. For a fixed n
// and cfg the result is bit-identical across runs.
func ReduceOrdered(n int, partial func(lo, hi int) float64, cfg Config) float64 {
	chunks := Chunks(n, cfg)
	partials := make([]float64, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c Chunk) {
			defer wg.Done()
			partials[i] = partial(c.Lo, c.Hi)
		}(i, c)
	}
	wg.Wait()

	var total float64
	for _, p := range partials {
		total += p
	}
	return total
}
