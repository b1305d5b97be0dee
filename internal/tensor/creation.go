package tensor

import (
	"fmt"
	"math/rand/v2"
	"unsafe"

	"github.com/born-ml/expkit/internal/parallel"
)

// FromSlice creates a tensor on device holding a copy of data.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), device)
	if err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(data), []int(shape))
	}

	//nolint:gosec // unsafe.Slice over a typed slice of known length
	src := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*raw.dtype.Size())
	copy(raw.buffer.data, src)
	return raw, nil
}

// Rand creates a tensor with values uniformly distributed in [0, 1), drawn from
// the default generator of device.
func Rand(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return DefaultGenerator(device).Rand(shape, dtype)
}

// Randn creates a tensor with values from N(0, 1), drawn from the default
// generator of device.
func Randn(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return DefaultGenerator(device).Randn(shape, dtype)
}

// Rand creates a tensor on the generator's device with values uniformly
// distributed in [0, 1).
func (g *Generator) Rand(shape Shape, dtype DataType) (*RawTensor, error) {
	return g.sample(shape, dtype, (*rand.Rand).Float64)
}

// Randn creates a tensor on the generator's device with values from N(0, 1).
func (g *Generator) Randn(shape Shape, dtype DataType) (*RawTensor, error) {
	return g.sample(shape, dtype, (*rand.Rand).NormFloat64)
}

func (g *Generator) sample(shape Shape, dtype DataType, draw func(*rand.Rand) float64) (*RawTensor, error) {
	if dtype != Float32 && dtype != Float64 {
		return nil, fmt.Errorf("random tensor of %s: %w", dtype, ErrUnsupportedDType)
	}
	raw, err := NewRaw(shape, dtype, g.device)
	if err != nil {
		return nil, err
	}

	if dtype == Float64 {
		data := raw.AsFloat64()
		g.fill(func(r *rand.Rand) {
			for i := range data {
				data[i] = draw(r)
			}
		})
		return raw, nil
	}

	// Draws stay sequential so the values depend only on the seed; the
	// narrowing pass is split across workers.
	draws := make([]float64, raw.NumElements())
	g.fill(func(r *rand.Rand) {
		for i := range draws {
			draws[i] = draw(r)
		}
	})
	data := raw.AsFloat32()
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = reduceMinChunk
	parallel.For(len(data), func(i int) {
		data[i] = float32(draws[i])
	}, cfg)
	return raw, nil
}
