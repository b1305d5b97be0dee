package tensor

import "errors"

// Common errors.
var (
	ErrDeviceUnavailable = errors.New("device not available")
	ErrUnknownDevice     = errors.New("unknown device")
	ErrNotAccelerator    = errors.New("device is not an accelerator")
	ErrUnsupportedDType  = errors.New("unsupported data type")
	ErrShapeMismatch     = errors.New("data length does not match shape")
)
