package flashkv

import "github.com/zeebo/errs"

var (
	// ErrInvalidRegion is returned from construction when the region
	// parameters cannot describe a window on the device.
	ErrInvalidRegion = errs.Class("invalid region")

	// ErrOutOfBounds is returned when a requested range falls outside the
	// configured region. Always a caller bug; never retried.
	ErrOutOfBounds = errs.Class("out of bounds")

	// ErrMisalignedAccess is returned when an offset or length violates
	// the erase-unit or write-unit granularity of the part.
	ErrMisalignedAccess = errs.Class("misaligned access")

	// ErrDeviceFault wraps failures reported by the hardware, including
	// command timeouts. An erase fault usually means a worn-out unit.
	ErrDeviceFault = errs.Class("device fault")

	// ErrDeviceClaimed is returned from construction when another
	// Controller already owns the device.
	ErrDeviceClaimed = errs.Class("device claimed")
)
