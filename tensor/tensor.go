// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/expkit/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Generator is a seedable random source bound to one device.
type Generator = tensor.Generator

// DefaultSeed seeds every generator that was never seeded explicitly.
const DefaultSeed = tensor.DefaultSeed

// Errors returned by tensor operations.
var (
	ErrDeviceUnavailable = tensor.ErrDeviceUnavailable
	ErrUnknownDevice     = tensor.ErrUnknownDevice
	ErrNotAccelerator    = tensor.ErrNotAccelerator
	ErrUnsupportedDType  = tensor.ErrUnsupportedDType
	ErrShapeMismatch     = tensor.ErrShapeMismatch
)

// Creation functions

// NewRaw creates a zero-filled tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor from a Go slice. The data is copied.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// Rand creates a float tensor with values from U(0, 1), drawn from the
// default generator of device.
func Rand(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Rand(shape, dtype, device)
}

// Randn creates a float tensor with values from N(0, 1), drawn from the
// default generator of device.
func Randn(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Randn(shape, dtype, device)
}

// Devices

// ParseDevice maps a device name such as "cpu", "cuda" or "mps" to a Device.
func ParseDevice(name string) (Device, error) {
	return tensor.ParseDevice(name)
}

// RegisterAccelerator marks d as available. The first accelerator registered
// becomes the current one.
func RegisterAccelerator(d Device) error {
	return tensor.RegisterAccelerator(d)
}

// UnregisterAccelerator marks d as unavailable.
func UnregisterAccelerator(d Device) {
	tensor.UnregisterAccelerator(d)
}

// AcceleratorAvailable reports whether any accelerator is registered.
func AcceleratorAvailable() bool {
	return tensor.AcceleratorAvailable()
}

// Accelerators lists the registered accelerators.
func Accelerators() []Device {
	return tensor.Accelerators()
}

// CurrentAccelerator returns the accelerator used by default, if any.
func CurrentAccelerator() (Device, bool) {
	return tensor.CurrentAccelerator()
}

// SetCurrentAccelerator selects a registered accelerator as the default.
func SetCurrentAccelerator(d Device) error {
	return tensor.SetCurrentAccelerator(d)
}

// Available reports whether tensors can be placed on d. CPU is always available.
func Available(d Device) bool {
	return tensor.Available(d)
}

// Random generators

// NewGenerator returns a standalone generator for device seeded with seed.
func NewGenerator(device Device, seed int64) *Generator {
	return tensor.NewGenerator(device, seed)
}

// DefaultGenerator returns the process-wide generator of device.
func DefaultGenerator(device Device) *Generator {
	return tensor.DefaultGenerator(device)
}

// ManualSeed reseeds the default generator of device.
func ManualSeed(device Device, seed int64) {
	tensor.ManualSeed(device, seed)
}

// ManualSeedAll reseeds the default generators of every registered accelerator.
func ManualSeedAll(seed int64) {
	tensor.ManualSeedAll(seed)
}

// Kernel selection

// SetBenchmark turns kernel autotuning on or off. Turning it off forgets
// every tuned configuration.
func SetBenchmark(on bool) {
	tensor.SetBenchmark(on)
}

// Benchmark reports whether kernel autotuning is on.
func Benchmark() bool {
	return tensor.Benchmark()
}

// SetDeterministic restricts reductions to fixed, order-preserving kernels.
// It takes precedence over benchmark mode.
func SetDeterministic(on bool) {
	tensor.SetDeterministic(on)
}

// Deterministic reports whether deterministic kernels are enforced.
func Deterministic() bool {
	return tensor.Deterministic()
}
