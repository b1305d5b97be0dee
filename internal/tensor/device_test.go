package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		in      string
		want    Device
		wantErr bool
	}{
		{in: "cpu", want: CPU},
		{in: " CUDA ", want: CUDA},
		{in: "gpu", want: CUDA},
		{in: "mps", want: Metal},
		{in: "WebGPU", want: WebGPU},
		{in: "vulkan", want: Vulkan},
		{in: "tpu", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDevice(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownDevice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAcceleratorRegistry(t *testing.T) {
	assert.False(t, AcceleratorAvailable())
	_, ok := CurrentAccelerator()
	assert.False(t, ok)

	assert.ErrorIs(t, RegisterAccelerator(CPU), ErrNotAccelerator)
	assert.ErrorIs(t, RegisterAccelerator(Device(99)), ErrUnknownDevice)

	useAccelerator(t, Metal)
	useAccelerator(t, WebGPU)
	require.NoError(t, RegisterAccelerator(Metal)) // duplicate is a no-op

	assert.True(t, AcceleratorAvailable())
	assert.Equal(t, []Device{Metal, WebGPU}, Accelerators())

	cur, ok := CurrentAccelerator()
	require.True(t, ok)
	assert.Equal(t, Metal, cur)

	require.NoError(t, SetCurrentAccelerator(WebGPU))
	cur, _ = CurrentAccelerator()
	assert.Equal(t, WebGPU, cur)
	assert.ErrorIs(t, SetCurrentAccelerator(CUDA), ErrDeviceUnavailable)

	UnregisterAccelerator(WebGPU)
	cur, _ = CurrentAccelerator()
	assert.Equal(t, Metal, cur)
	assert.True(t, Available(CPU))
	assert.True(t, Available(Metal))
	assert.False(t, Available(WebGPU))
}
