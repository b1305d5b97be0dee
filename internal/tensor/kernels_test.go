package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/expkit/internal/parallel"
)

func restoreKernelFlags(t *testing.T) {
	t.Helper()
	bench, det := Benchmark(), Deterministic()
	t.Cleanup(func() {
		SetBenchmark(bench)
		SetDeterministic(det)
	})
}

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		raw  func() (*RawTensor, error)
		want float64
	}{
		{"float32", func() (*RawTensor, error) { return FromSlice([]float32{1, 2, 3.5}, Shape{3}, CPU) }, 6.5},
		{"float64", func() (*RawTensor, error) { return FromSlice([]float64{-1, 1, 10}, Shape{3}, CPU) }, 10},
		{"int32", func() (*RawTensor, error) { return FromSlice([]int32{4, 5}, Shape{2}, CPU) }, 9},
		{"int64", func() (*RawTensor, error) { return FromSlice([]int64{1, 2, 3, 4}, Shape{2, 2}, CPU) }, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.raw()
			require.NoError(t, err)
			got, err := raw.Sum()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSumUnsupported(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Bool, CPU)
	require.NoError(t, err)
	_, err = raw.Sum()
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}

func TestSumDeterministic(t *testing.T) {
	restoreKernelFlags(t)
	SetBenchmark(false)
	SetDeterministic(true)

	g := NewGenerator(CPU, 5)
	raw, err := g.Randn(Shape{1 << 16}, Float32)
	require.NoError(t, err)

	first, err := raw.Sum()
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		got, err := raw.Sum()
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(first), math.Float64bits(got))
	}
}

func TestBenchmarkModeTunesOnce(t *testing.T) {
	restoreKernelFlags(t)
	SetDeterministic(false)
	SetBenchmark(true)

	raw, err := FromSlice(make([]float64, 1<<14), Shape{1 << 14}, CPU)
	require.NoError(t, err)
	_, err = raw.Sum()
	require.NoError(t, err)

	_, ok := tuned.lookup(15)
	assert.True(t, ok, "benchmark mode should cache a configuration")

	SetBenchmark(false)
	_, ok = tuned.lookup(15)
	assert.False(t, ok, "disabling benchmark mode should drop tuned configurations")
}

func TestDeterministicOverridesBenchmark(t *testing.T) {
	restoreKernelFlags(t)
	SetBenchmark(true)
	SetDeterministic(true)

	cfg := reduceConfig(1<<20, func(parallel.Config) {})
	assert.Equal(t, deterministicWorkers, cfg.NumWorkers)
}
