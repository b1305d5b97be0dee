package tensor

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// ParseDevice maps a case-insensitive device name ("cpu", "cuda", ...) to a Device.
func ParseDevice(name string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpu":
		return CPU, nil
	case "cuda", "gpu":
		return CUDA, nil
	case "vulkan":
		return Vulkan, nil
	case "metal", "mps":
		return Metal, nil
	case "webgpu":
		return WebGPU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
}

// accelerators tracks the non-CPU devices compute backends have registered.
// current is only meaningful while devices is non-empty.
var accelerators struct {
	mu      sync.RWMutex
	devices []Device
	current Device
}

// RegisterAccelerator marks an accelerator as available. Backends call this once
// they have acquired the device. The first registered accelerator becomes current.
func RegisterAccelerator(d Device) error {
	if d == CPU {
		return fmt.Errorf("register accelerator: %w", ErrNotAccelerator)
	}
	if d.String() == "Unknown" {
		return fmt.Errorf("register accelerator: %w: %d", ErrUnknownDevice, int(d))
	}

	accelerators.mu.Lock()
	defer accelerators.mu.Unlock()

	if slices.Contains(accelerators.devices, d) {
		return nil
	}
	if len(accelerators.devices) == 0 {
		accelerators.current = d
	}
	accelerators.devices = append(accelerators.devices, d)
	return nil
}

// UnregisterAccelerator removes an accelerator, e.g. when its backend shuts down.
func UnregisterAccelerator(d Device) {
	accelerators.mu.Lock()
	defer accelerators.mu.Unlock()

	accelerators.devices = slices.DeleteFunc(accelerators.devices, func(x Device) bool { return x == d })
	if accelerators.current == d && len(accelerators.devices) > 0 {
		accelerators.current = accelerators.devices[0]
	}
}

// AcceleratorAvailable reports whether at least one accelerator is registered.
func AcceleratorAvailable() bool {
	accelerators.mu.RLock()
	defer accelerators.mu.RUnlock()
	return len(accelerators.devices) > 0
}

// Accelerators returns the registered accelerators in registration order.
func Accelerators() []Device {
	accelerators.mu.RLock()
	defer accelerators.mu.RUnlock()
	return slices.Clone(accelerators.devices)
}

// CurrentAccelerator returns the accelerator new work targets by default.
func CurrentAccelerator() (Device, bool) {
	accelerators.mu.RLock()
	defer accelerators.mu.RUnlock()
	if len(accelerators.devices) == 0 {
		return CPU, false
	}
	return accelerators.current, true
}

// SetCurrentAccelerator selects a registered accelerator as current.
func SetCurrentAccelerator(d Device) error {
	accelerators.mu.Lock()
	defer accelerators.mu.Unlock()
	if !slices.Contains(accelerators.devices, d) {
		return fmt.Errorf("%w: %s", ErrDeviceUnavailable, d)
	}
	accelerators.current = d
	return nil
}

// Available reports whether tensors can be placed on d. CPU is always available.
func Available(d Device) bool {
	if d == CPU {
		return true
	}
	accelerators.mu.RLock()
	defer accelerators.mu.RUnlock()
	return slices.Contains(accelerators.devices, d)
}
