package tensor

import (
	"math/rand/v2"
	"sync"
)

// DefaultSeed is the seed a device generator starts from until it is seeded explicitly.
const DefaultSeed int64 = 67280421310721

// pcgStream is the fixed PCG increment, so a generator is a function of its seed alone.
const pcgStream = 0x9e3779b97f4a7c15

// Generator is a seedable pseudo-random source bound to one device.
// It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	device Device
	seed   int64
	rng    *rand.Rand
}

// NewGenerator creates a generator for device seeded with seed.
func NewGenerator(device Device, seed int64) *Generator {
	g := &Generator{device: device}
	g.ManualSeed(seed)
	return g
}

// ManualSeed resets the generator state to the start of the stream for seed.
func (g *Generator) ManualSeed(seed int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seed = seed
	g.rng = rand.New(rand.NewPCG(uint64(seed), pcgStream)) //nolint:gosec // G404: reproducible ML sampling
}

// InitialSeed returns the seed of the current stream.
func (g *Generator) InitialSeed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seed
}

// Device returns the device the generator serves.
func (g *Generator) Device() Device {
	return g.device
}

// Float64 returns a uniform value in [0, 1).
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// NormFloat64 returns a standard normal value.
func (g *Generator) NormFloat64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.NormFloat64()
}

// Int64N returns a uniform value in [0, n). Panics if n <= 0.
func (g *Generator) Int64N(n int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int64N(n)
}

// fill runs f with exclusive access to the stream, so a whole tensor is drawn
// from consecutive values even when other goroutines share the generator.
func (g *Generator) fill(f func(r *rand.Rand)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(g.rng)
}

var generators = struct {
	mu sync.Mutex
	m  map[Device]*Generator
}{m: make(map[Device]*Generator)}

// DefaultGenerator returns the process-wide generator for device, creating it
// with DefaultSeed on first use.
func DefaultGenerator(device Device) *Generator {
	generators.mu.Lock()
	defer generators.mu.Unlock()
	g, ok := generators.m[device]
	if !ok {
		g = NewGenerator(device, DefaultSeed)
		generators.m[device] = g
	}
	return g
}

// ManualSeed seeds the default generator of device.
func ManualSeed(device Device, seed int64) {
	DefaultGenerator(device).ManualSeed(seed)
}

// ManualSeedAll seeds the default generators of every registered accelerator.
func ManualSeedAll(seed int64) {
	for _, d := range Accelerators() {
		ManualSeed(d, seed)
	}
}
