package bladerf

import (
	"errors"
	"fmt"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// Errors raised by this package before the driver is called.
var (
	// ErrCString is returned when a string cannot cross the driver boundary:
	// an identifier with an interior NUL byte, or driver text that is not UTF-8.
	ErrCString = errors.New("bladerf: invalid C string")

	// ErrSamplesPerBuffer is returned when a buffer size is not a positive
	// multiple of SamplesPerBuffer.
	ErrSamplesPerBuffer = errors.New("bladerf: samples per buffer must be a positive multiple of 1024")

	// ErrSamplesLen is returned when a sample slice does not hold whole I/Q pairs.
	ErrSamplesLen = errors.New("bladerf: samples length must be a multiple of 2")

	// ErrClosed is returned by every call on a Device after Close.
	ErrClosed = errors.New("bladerf: device is closed")
)

// Errors reported by the driver.
var (
	ErrRange       = errors.New("bladerf: parameter out of range")
	ErrUnexpected  = errors.New("bladerf: unexpected failure")
	ErrInvalid     = errors.New("bladerf: invalid operation or parameter")
	ErrMemory      = errors.New("bladerf: memory allocation error")
	ErrIO          = errors.New("bladerf: device I/O error")
	ErrTimeout     = errors.New("bladerf: operation timed out")
	ErrNoDevice    = errors.New("bladerf: no device available")
	ErrUnsupported = errors.New("bladerf: operation not supported")
	ErrQueueFull   = errors.New("bladerf: queue full")
	ErrWouldBlock  = errors.New("bladerf: operation would block")
	ErrNotInit     = errors.New("bladerf: device insufficiently initialized for operation")
)

var statusErrors = map[int]error{
	driver.ErrUnexpected:  ErrUnexpected,
	driver.ErrRange:       ErrRange,
	driver.ErrInval:       ErrInvalid,
	driver.ErrMem:         ErrMemory,
	driver.ErrIO:          ErrIO,
	driver.ErrTimeout:     ErrTimeout,
	driver.ErrNoDev:       ErrNoDevice,
	driver.ErrUnsupported: ErrUnsupported,
	driver.ErrQueueFull:   ErrQueueFull,
	driver.ErrWouldBlock:  ErrWouldBlock,
	driver.ErrNotInit:     ErrNotInit,
}

// StatusError carries a driver status code that has no dedicated sentinel.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bladerf: %s (%d)", driver.StatusText(e.Code), e.Code)
}

// statusError converts a driver status into an error, nil for success.
func statusError(code int) error {
	if code == driver.Success {
		return nil
	}
	if err, ok := statusErrors[code]; ok {
		return err
	}
	return &StatusError{Code: code}
}

// IsRetryable reports whether err is a transient streaming condition that the
// same call may succeed on if repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrQueueFull) || errors.Is(err, ErrWouldBlock)
}
