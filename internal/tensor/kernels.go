package tensor

import (
	"fmt"
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/born-ml/expkit/internal/parallel"
)

// Kernel selection flags. Both start false, matching the usual framework defaults.
var (
	benchmarkMode     atomic.Bool
	deterministicMode atomic.Bool
)

const (
	// reduceMinChunk keeps tiny reductions on a single goroutine.
	reduceMinChunk = 4096
	// deterministicWorkers fixes the reduction partition independent of the host.
	deterministicWorkers = 8
)

// SetBenchmark enables or disables autotuned kernel selection. Disabling it
// drops any configurations chosen so far.
func SetBenchmark(on bool) {
	benchmarkMode.Store(on)
	if !on {
		tuned.reset()
	}
}

// Benchmark reports whether autotuned kernel selection is enabled.
func Benchmark() bool {
	return benchmarkMode.Load()
}

// SetDeterministic enables or disables deterministic kernels.
func SetDeterministic(on bool) {
	deterministicMode.Store(on)
}

// Deterministic reports whether deterministic kernels are enforced.
func Deterministic() bool {
	return deterministicMode.Load()
}

// tunedConfigs caches the fastest worker count per power-of-two problem size.
type tunedConfigs struct {
	mu      sync.Mutex
	workers map[int]int
}

var tuned = &tunedConfigs{workers: make(map[int]int)}

func (tc *tunedConfigs) reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	clear(tc.workers)
}

func (tc *tunedConfigs) lookup(bucket int) (int, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	w, ok := tc.workers[bucket]
	return w, ok
}

func (tc *tunedConfigs) store(bucket, workers int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.workers[bucket] = workers
}

// reduceConfig picks the parallel layout for a reduction over n elements.
// Deterministic mode takes precedence over benchmark mode.
func reduceConfig(n int, run func(parallel.Config)) parallel.Config {
	if Deterministic() {
		return parallel.Config{Enabled: true, NumWorkers: deterministicWorkers, MinChunkSize: reduceMinChunk}
	}

	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = reduceMinChunk
	if !Benchmark() || n < reduceMinChunk {
		return cfg
	}

	bucket := bits.Len(uint(n))
	if w, ok := tuned.lookup(bucket); ok {
		cfg.NumWorkers = w
		cfg.Enabled = w > 1
		return cfg
	}

	best, bestTime := 1, time.Duration(-1)
	for _, w := range candidateWorkers() {
		trial := parallel.Config{Enabled: w > 1, NumWorkers: w, MinChunkSize: reduceMinChunk}
		start := time.Now()
		run(trial)
		if elapsed := time.Since(start); bestTime < 0 || elapsed < bestTime {
			best, bestTime = w, elapsed
		}
	}
	tuned.store(bucket, best)

	cfg.NumWorkers = best
	cfg.Enabled = best > 1
	return cfg
}

func candidateWorkers() []int {
	n := runtime.NumCPU()
	out := []int{1}
	if n/2 > 1 {
		out = append(out, n/2)
	}
	if n > 1 {
		out = append(out, n)
	}
	return out
}

// Sum returns the sum of all elements, accumulated in float64.
//
// In deterministic mode the partition is fixed and partials are combined in
// order, so repeated calls return bit-identical results on any host.
func (r *RawTensor) Sum() (float64, error) {
	switch r.dtype {
	case Float32:
		return sumOf(r.AsFloat32()), nil
	case Float64:
		return sumOf(r.AsFloat64()), nil
	case Int32:
		return sumOf(r.AsInt32()), nil
	case Int64:
		return sumOf(r.AsInt64()), nil
	default:
		return 0, fmt.Errorf("sum of %s tensor: %w", r.dtype, ErrUnsupportedDType)
	}
}

func sumOf[T float32 | float64 | int32 | int64](data []T) float64 {
	partial := func(lo, hi int) float64 {
		var s float64
		for _, v := range data[lo:hi] {
			s += float64(v)
		}
		return s
	}

	n := len(data)
	cfg := reduceConfig(n, func(c parallel.Config) { parallel.Reduce(n, partial, c) })
	if Deterministic() {
		return parallel.ReduceOrdered(n, partial, cfg)
	}
	return parallel.Reduce(n, partial, cfg)
}
