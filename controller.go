package flashkv

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akmistry/flashkv/internal/debug"
)

// Worst-case command timings for common SPI NOR parts. Integrators with
// slower parts should use NewControllerWithTimeouts and their datasheet
// numbers.
const (
	DefaultProgramTimeout = 5 * time.Millisecond
	DefaultEraseTimeout   = 2 * time.Second
)

var (
	claimedLock sync.Mutex
	claimed     = make(map[Device]bool)
)

// Controller fulfils the storage engine's flash contract against a single
// Device. It owns the device exclusively: at most one Controller may
// exist per device at a time, and its three operations are the only path
// to the hardware.
//
// The controller is stateless between calls. Each call validates the
// request against the Region, issues the hardware commands in
// offset-ascending order, and busy-polls each to completion before
// returning. A call made while another is still in progress (e.g. from an
// interrupt handler) is refused with ErrDeviceFault rather than allowed
// to touch a busy flash bank.
type Controller struct {
	region *Region
	dev    Device

	programTimeout time.Duration
	eraseTimeout   time.Duration

	inflight int32
}

// NewController claims dev and returns a Controller serving region with
// default command timeouts.
func NewController(dev Device, region *Region) (*Controller, error) {
	return NewControllerWithTimeouts(dev, region, DefaultProgramTimeout, DefaultEraseTimeout)
}

// NewControllerWithTimeouts is NewController with explicit per-command
// wait budgets, taken from the part's worst-case datasheet timings.
func NewControllerWithTimeouts(dev Device, region *Region,
	programTimeout, eraseTimeout time.Duration) (*Controller, error) {
	if region.EraseUnitSize() != dev.EraseUnitSize() {
		return nil, ErrInvalidRegion.New("region erase unit %d != device erase unit %d",
			region.EraseUnitSize(), dev.EraseUnitSize())
	}
	if region.WriteUnitSize() != dev.WriteUnitSize() {
		return nil, ErrInvalidRegion.New("region write unit %d != device write unit %d",
			region.WriteUnitSize(), dev.WriteUnitSize())
	}
	if region.Base()+region.Length() > dev.Capacity() {
		return nil, ErrInvalidRegion.New("window [%d, %d) exceeds device capacity %d",
			region.Base(), region.Base()+region.Length(), dev.Capacity())
	}

	claimedLock.Lock()
	defer claimedLock.Unlock()
	if claimed[dev] {
		return nil, ErrDeviceClaimed.New("device already owned by another controller")
	}
	claimed[dev] = true

	return &Controller{
		region:         region,
		dev:            dev,
		programTimeout: programTimeout,
		eraseTimeout:   eraseTimeout,
	}, nil
}

// Close releases the controller's claim on the device. The controller
// must not be used afterwards.
func (c *Controller) Close() error {
	claimedLock.Lock()
	defer claimedLock.Unlock()
	delete(claimed, c.dev)
	return nil
}

// Region returns the window this controller serves.
func (c *Controller) Region() *Region {
	return c.region
}

func (c *Controller) begin() error {
	if !atomic.CompareAndSwapInt32(&c.inflight, 0, 1) {
		return ErrDeviceFault.New("flash operation already in progress")
	}
	return nil
}

func (c *Controller) end() {
	atomic.StoreInt32(&c.inflight, 0)
}

// waitReady polls the device's status flag until the current command
// completes, or fails with ErrDeviceFault once limit has elapsed. A NOR
// program/erase cannot be aborted mid-operation, so there is nothing to
// cancel; exceeding the worst-case timing is reported as a fault.
func (c *Controller) waitReady(limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for {
		busy, err := c.dev.Busy()
		if err != nil {
			return ErrDeviceFault.Wrap(err)
		}
		if !busy {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrDeviceFault.New("command still busy after %v", limit)
		}
	}
}

// ReadAt copies len(p) bytes starting at region-relative offset off into
// p. It has no side effects.
func (c *Controller) ReadAt(p []byte, off int64) (int, error) {
	if !c.region.Contains(off, int64(len(p))) {
		return 0, ErrOutOfBounds.New("read [%d, %d) outside region of %d bytes",
			off, off+int64(len(p)), c.region.Length())
	}
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer c.end()

	n, err := c.dev.ReadAt(p, c.region.Base()+off)
	if err != nil {
		return n, ErrDeviceFault.Wrap(err)
	}
	if n < len(p) {
		return n, ErrDeviceFault.New("short read: %d of %d bytes", n, len(p))
	}
	return n, nil
}

// WriteAt programs p at region-relative offset off. The target range must
// already be erased for any bit that needs to become unset; the adapter
// does not check this (outside debug builds) and does not erase
// implicitly. The payload is programmed one write-unit chunk at a time in
// ascending order, each command completed before the next is issued, so a
// fault mid-way leaves a deterministic prefix durably programmed. The
// returned count covers exactly that prefix.
func (c *Controller) WriteAt(p []byte, off int64) (int, error) {
	length := int64(len(p))
	if !c.region.Contains(off, length) {
		return 0, ErrOutOfBounds.New("write [%d, %d) outside region of %d bytes",
			off, off+length, c.region.Length())
	}
	writeUnit := c.region.WriteUnitSize()
	if !c.dev.SubUnitWrites() && (off%writeUnit != 0 || length%writeUnit != 0) {
		return 0, ErrMisalignedAccess.New(
			"device requires %d-byte write units: offset %d, length %d",
			writeUnit, off, length)
	}
	if length == 0 {
		return 0, nil
	}
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer c.end()

	debug.Assert("write target is erased", func() bool {
		return c.rangeErased(off, length)
	})

	n := 0
	abs := c.region.Base() + off
	for len(p) > 0 {
		// Chunks never cross a write unit boundary.
		chunk := writeUnit - abs%writeUnit
		if chunk > int64(len(p)) {
			chunk = int64(len(p))
		}
		if err := c.dev.PageProgram(abs, p[:chunk]); err != nil {
			return n, ErrDeviceFault.Wrap(err)
		}
		if err := c.waitReady(c.programTimeout); err != nil {
			return n, err
		}
		n += int(chunk)
		abs += chunk
		p = p[chunk:]
	}
	return n, nil
}

// Erase returns [off, off+length) to the erased value. Both offset and
// length must be erase-unit-aligned. Units are erased in ascending order,
// each command completed before the next is issued.
func (c *Controller) Erase(off, length int64) error {
	if !c.region.Contains(off, length) {
		return ErrOutOfBounds.New("erase [%d, %d) outside region of %d bytes",
			off, off+length, c.region.Length())
	}
	if !c.region.IsEraseAligned(off, length) {
		return ErrMisalignedAccess.New(
			"erase [%d, %d) not aligned to %d-byte erase units",
			off, off+length, c.region.EraseUnitSize())
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	eraseUnit := c.region.EraseUnitSize()
	base := c.region.Base()
	for abs := base + off; abs < base+off+length; abs += eraseUnit {
		if err := c.dev.SectorErase(abs); err != nil {
			return ErrDeviceFault.Wrap(err)
		}
		if err := c.waitReady(c.eraseTimeout); err != nil {
			return err
		}
	}
	return nil
}

// EraseUnitAt erases the index'th erase unit of the region. Engines that
// garbage-collect one unit at a time call this.
func (c *Controller) EraseUnitAt(index int) error {
	eraseUnit := c.region.EraseUnitSize()
	return c.Erase(int64(index)*eraseUnit, eraseUnit)
}

// rangeErased reports whether the region-relative range reads back as all
// erased bytes. Only used from debug assertions; a read failure here is
// not the assertion's concern.
func (c *Controller) rangeErased(off, length int64) bool {
	buf := make([]byte, length)
	if _, err := c.dev.ReadAt(buf, c.region.Base()+off); err != nil {
		return true
	}
	for _, b := range buf {
		if b != ErasedByte {
			return false
		}
	}
	return true
}
