// Package random owns the process-wide pseudo-random generators and seeds them
// together for reproducible experiments.
//
// Generators are explicit values. Code that needs randomness takes one of
// General(), Array() or tensor.DefaultGenerator(device) and draws from it; Seed
// resets all of them at once.
package random

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/expkit/internal/logger"
	"github.com/born-ml/expkit/internal/metrics"
	"github.com/born-ml/expkit/internal/tensor"
)

// Stream increments keep the general and array generators on different
// sequences when they share a seed.
const (
	generalStream = 0x853c49e6748fea9b
	arrayStream   = 0xda3e39cb94b95bdb
)

// lockedSource serializes access to a PCG source so one generator can be shared
// across goroutines.
type lockedSource struct {
	mu  sync.Mutex
	pcg *rand.PCG
}

func newLockedSource(seed int64, stream uint64) *lockedSource {
	return &lockedSource{pcg: rand.NewPCG(uint64(seed), stream)}
}

// Uint64 implements rand.Source.
func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pcg.Uint64()
}

func (s *lockedSource) seed(seed int64, stream uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pcg.Seed(uint64(seed), stream)
}

var (
	generalSrc = newLockedSource(tensor.DefaultSeed, generalStream)
	arraySrc   = newLockedSource(tensor.DefaultSeed, arrayStream)

	general = rand.New(generalSrc) //nolint:gosec // G404: reproducible experiment randomness
)

// General returns the general-purpose generator (shuffles, sampling, choices).
func General() *rand.Rand {
	return general
}

// Array returns the numeric-array generator backing Normal and Uniform.
func Array() *ArrayRNG {
	return arrayRNG
}

// ArrayRNG draws whole arrays from gonum distributions.
type ArrayRNG struct {
	src rand.Source
}

var arrayRNG = &ArrayRNG{src: arraySrc}

// Source exposes the underlying source, for use with other gonum distributions.
func (a *ArrayRNG) Source() rand.Source {
	return a.src
}

// Normal returns n samples from N(mu, sigma).
func (a *ArrayRNG) Normal(n int, mu, sigma float64) []float64 {
	return a.fill(n, distuv.Normal{Mu: mu, Sigma: sigma, Src: a.src})
}

// Uniform returns n samples from U[lo, hi).
func (a *ArrayRNG) Uniform(n int, lo, hi float64) []float64 {
	return a.fill(n, distuv.Uniform{Min: lo, Max: hi, Src: a.src})
}

func (a *ArrayRNG) fill(n int, dist distuv.Rander) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// Seed sets the state of every process-wide generator from seed:
//   - the numeric-array generator (Array),
//   - the general-purpose generator (General),
//   - the tensor CPU generator,
//   - if an accelerator is available, the current accelerator's generator and
//     the generators of all registered accelerators.
//
// It also turns off autotuned kernel selection and turns on deterministic
// kernels, trading speed for reproducibility. Calling Seed again with the same
// value restarts every stream from the same point.
func Seed(seed int64) {
	arraySrc.seed(seed, arrayStream)
	generalSrc.seed(seed, generalStream)
	tensor.ManualSeed(tensor.CPU, seed)
	if tensor.AcceleratorAvailable() {
		if d, ok := tensor.CurrentAccelerator(); ok {
			tensor.ManualSeed(d, seed)
		}
		tensor.ManualSeedAll(seed)
	}
	tensor.SetBenchmark(false)
	tensor.SetDeterministic(true)

	metrics.SeedsApplied.Inc()
	metrics.LastSeed.Set(float64(seed))
	logger.Log.Debug("random generators seeded", "seed", seed, "accelerators", tensor.Accelerators())
}

// SeedDefault seeds with 0.
func SeedDefault() {
	Seed(0)
}
