// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides device-tagged tensors, per-device random generators
// and the kernel selection switches used by reproducible experiments.
//
// # Basic Usage
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, tensor.CPU)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(x) // Tensor[float32][3] on CPU
//
// # Supported Data Types
//
// The DType constraint covers:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
//   - bool (boolean masks)
//
// Random tensors (Rand, Randn) are float32 or float64 only.
//
// # Devices
//
// CPU is always available. Accelerators (CUDA, Vulkan, Metal, WebGPU) become
// available once a backend registers them with RegisterAccelerator:
//
//	if err := tensor.RegisterAccelerator(tensor.CUDA); err != nil {
//	    log.Fatal(err)
//	}
//	y, err := x.To(tensor.CUDA) // new tensor, x is unchanged
//
// Moving a tensor to the device it already lives on returns the same tensor.
// Moving it to a device that is not available fails with ErrDeviceUnavailable.
//
// # Random Generators
//
// Every device has a default Generator. ManualSeed reseeds one device,
// ManualSeedAll reseeds every registered accelerator. Rand and Randn draw from
// the default generator of the target device.
//
// # Kernel Selection
//
// Reductions such as RawTensor.Sum run in parallel. In benchmark mode the
// worker count is autotuned per input size and cached; in deterministic mode
// a fixed partition is used and partial results are combined in index order,
// so repeated calls are bit-identical. Deterministic mode wins when both are on.
package tensor
