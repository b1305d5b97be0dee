// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package batch moves named model inputs onto a compute device.
//
// Tensors are copied to the target device. Lists (token ids, strings, any
// other slice) are carried over unchanged and keep sharing their backing
// array with the input. The input mapping is never modified.
//
// Example usage:
//
//	import "github.com/born-ml/expkit/batch"
//
//	inputs := map[string]any{"ids": []int{101, 2023, 102}, "x": x}
//	moved, err := batch.MapToDevice(inputs, tensor.CUDA)
package batch

import (
	"github.com/born-ml/expkit/internal/batch"
	"github.com/born-ml/expkit/tensor"
)

// Batch maps input names to values.
type Batch = batch.Batch

// Value is a batch entry: either a List or a Tensor.
type Value = batch.Value

// List is a sequence passed through unchanged.
type List = batch.List

// Tensor is a tensor moved by ToDevice.
type Tensor = batch.Tensor

// TypeError reports a value that is neither a list nor a tensor.
type TypeError = batch.TypeError

// ErrUnsupportedValue is wrapped by TypeError.
var ErrUnsupportedValue = batch.ErrUnsupportedValue

// NewList wraps a slice or array.
func NewList(items any) (List, error) {
	return batch.NewList(items)
}

// FromMap classifies the values of m into lists and tensors.
func FromMap(m map[string]any) (Batch, error) {
	return batch.FromMap(m)
}

// ToDevice returns a new Batch with every tensor on device and every list
// carried over by reference.
func ToDevice(b Batch, device tensor.Device) (Batch, error) {
	return batch.ToDevice(b, device)
}

// MapToDevice is ToDevice for plain maps.
func MapToDevice(m map[string]any, device tensor.Device) (map[string]any, error) {
	return batch.MapToDevice(m, device)
}
