// Package batch moves named model inputs onto a compute device.
//
// A Batch maps input names to values of two kinds. Tensors are copied to the
// target device; lists (token ids, raw strings, any other slice) are carried
// over untouched, sharing their backing array with the input.
package batch

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/born-ml/expkit/internal/metrics"
	"github.com/born-ml/expkit/internal/tensor"
)

// ErrUnsupportedValue is wrapped by TypeError.
var ErrUnsupportedValue = errors.New("unsupported batch value")

// TypeError reports a mapping value that is neither a list nor a tensor.
type TypeError struct {
	Key  string
	Type reflect.Type // nil for an untyped nil value
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("batch: key %q: %v has type %v, want slice or *tensor.RawTensor", e.Key, ErrUnsupportedValue, e.Type)
}

// Unwrap returns ErrUnsupportedValue.
func (e *TypeError) Unwrap() error {
	return ErrUnsupportedValue
}

// Value is a batch entry: either a List or a Tensor.
type Value interface {
	isValue()
}

// List is an ordered sequence that ToDevice passes through as is.
type List struct {
	items any // a slice or array
}

// NewList wraps items, which must be a slice or an array.
func NewList(items any) (List, error) {
	if !isList(items) {
		return List{}, &TypeError{Type: reflect.TypeOf(items)}
	}
	return List{items: items}, nil
}

// Items returns the wrapped sequence, the same value NewList received.
func (l List) Items() any { return l.items }

// Len returns the number of elements.
func (l List) Len() int {
	if l.items == nil {
		return 0
	}
	return reflect.ValueOf(l.items).Len()
}

func (List) isValue() {}

// Tensor is a tensor entry that ToDevice moves.
type Tensor struct {
	*tensor.RawTensor
}

func (Tensor) isValue() {}

// Batch maps input names to values.
type Batch map[string]Value

// FromMap classifies every value of m. Slices and arrays become List,
// *tensor.RawTensor becomes Tensor, anything else is a *TypeError.
// Keys are checked in sorted order so the reported key is stable.
func FromMap(m map[string]any) (Batch, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := make(Batch, len(m))
	for _, k := range keys {
		v := m[k]
		switch x := v.(type) {
		case *tensor.RawTensor:
			if x == nil {
				return nil, &TypeError{Key: k, Type: reflect.TypeOf(v)}
			}
			b[k] = Tensor{x}
		case List:
			b[k] = x
		case Tensor:
			if x.RawTensor == nil {
				return nil, &TypeError{Key: k, Type: reflect.TypeOf(v)}
			}
			b[k] = x
		default:
			if !isList(v) {
				return nil, &TypeError{Key: k, Type: reflect.TypeOf(v)}
			}
			b[k] = List{items: v}
		}
	}
	return b, nil
}

// Map converts b back to a plain map, unwrapping lists and tensors.
func (b Batch) Map() map[string]any {
	m := make(map[string]any, len(b))
	for k, v := range b {
		switch x := v.(type) {
		case List:
			m[k] = x.items
		case Tensor:
			m[k] = x.RawTensor
		}
	}
	return m
}

// Tensor returns the tensor stored under key.
func (b Batch) Tensor(key string) (*tensor.RawTensor, bool) {
	t, ok := b[key].(Tensor)
	if !ok {
		return nil, false
	}
	return t.RawTensor, true
}

// List returns the list stored under key.
func (b Batch) List(key string) (List, bool) {
	l, ok := b[key].(List)
	return l, ok
}

// ToDevice returns a new Batch with the same keys where every tensor is
// placed on device and every list is carried over unchanged. b is not
// modified. A tensor that cannot be moved aborts the whole transfer.
func ToDevice(b Batch, device tensor.Device) (Batch, error) {
	out := make(Batch, len(b))
	moved := 0
	for k, v := range b {
		switch x := v.(type) {
		case List:
			out[k] = x
		case Tensor:
			t, err := x.To(device)
			if err != nil {
				return nil, fmt.Errorf("batch: key %q: %w", k, err)
			}
			out[k] = Tensor{t}
			moved++
		default:
			return nil, &TypeError{Key: k, Type: reflect.TypeOf(v)}
		}
	}
	metrics.TensorsMoved.WithLabelValues(device.String()).Add(float64(moved))
	return out, nil
}

// MapToDevice is FromMap followed by ToDevice, returning a plain map.
func MapToDevice(m map[string]any, device tensor.Device) (map[string]any, error) {
	b, err := FromMap(m)
	if err != nil {
		return nil, err
	}
	moved, err := ToDevice(b, device)
	if err != nil {
		return nil, err
	}
	return moved.Map(), nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
