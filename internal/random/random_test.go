package random

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/expkit/internal/metrics"
	"github.com/born-ml/expkit/internal/tensor"
)

type draws struct {
	array   []float64
	uniform []float64
	general []int
	cpu     []float32
	accel   []float32
}

func sampleAll(t *testing.T, accel tensor.Device) draws {
	t.Helper()
	var d draws
	d.array = Array().Normal(8, 0, 1)
	d.uniform = Array().Uniform(4, -1, 1)
	d.general = General().Perm(10)

	cpu, err := tensor.Randn(tensor.Shape{8}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	d.cpu = append([]float32(nil), cpu.AsFloat32()...)

	if accel != tensor.CPU {
		acc, err := tensor.Rand(tensor.Shape{8}, tensor.Float32, accel)
		require.NoError(t, err)
		d.accel = append([]float32(nil), acc.AsFloat32()...)
	}
	return d
}

func restoreKernelFlags(t *testing.T) {
	t.Helper()
	bench, det := tensor.Benchmark(), tensor.Deterministic()
	t.Cleanup(func() {
		tensor.SetBenchmark(bench)
		tensor.SetDeterministic(det)
	})
}

func TestSeedReproducible(t *testing.T) {
	restoreKernelFlags(t)

	Seed(42)
	first := sampleAll(t, tensor.CPU)
	Seed(42)
	second := sampleAll(t, tensor.CPU)

	assert.Equal(t, first, second)
}

func TestSeedDifferentSeedsDiffer(t *testing.T) {
	restoreKernelFlags(t)

	Seed(1)
	a := sampleAll(t, tensor.CPU)
	Seed(2)
	b := sampleAll(t, tensor.CPU)

	assert.NotEqual(t, a.array, b.array)
	assert.NotEqual(t, a.general, b.general)
	assert.NotEqual(t, a.cpu, b.cpu)
}

func TestSeedWithAccelerators(t *testing.T) {
	restoreKernelFlags(t)
	require.NoError(t, tensor.RegisterAccelerator(tensor.CUDA))
	require.NoError(t, tensor.RegisterAccelerator(tensor.Metal))
	t.Cleanup(func() {
		tensor.UnregisterAccelerator(tensor.CUDA)
		tensor.UnregisterAccelerator(tensor.Metal)
	})

	Seed(42)
	first := sampleAll(t, tensor.CUDA)
	assert.Equal(t, int64(42), tensor.DefaultGenerator(tensor.Metal).InitialSeed())

	Seed(42)
	second := sampleAll(t, tensor.CUDA)
	assert.Equal(t, first, second)
}

func TestSeedConfiguresDeterministicKernels(t *testing.T) {
	restoreKernelFlags(t)
	tensor.SetBenchmark(true)
	tensor.SetDeterministic(false)

	SeedDefault()

	assert.False(t, tensor.Benchmark())
	assert.True(t, tensor.Deterministic())
	assert.Equal(t, int64(0), tensor.DefaultGenerator(tensor.CPU).InitialSeed())
}

func TestSeedMetrics(t *testing.T) {
	restoreKernelFlags(t)
	before := testutil.ToFloat64(metrics.SeedsApplied)

	Seed(7)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SeedsApplied))
	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.LastSeed))
}

func TestArrayUniformRange(t *testing.T) {
	for _, v := range Array().Uniform(1000, 2, 3) {
		require.GreaterOrEqual(t, v, 2.0)
		require.Less(t, v, 3.0)
	}
}
