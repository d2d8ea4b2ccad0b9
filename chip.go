package flashkv

import (
	"errors"
	"sync"
)

// Poll counts modeling program/erase latency on the simulated part.
const (
	programBusyPolls = 2
	eraseBusyPolls   = 8
)

var (
	errChipRange     = errors.New("flashkv: address outside device")
	errChipPageCross = errors.New("flashkv: program crosses a write unit")
	errChipSubUnit   = errors.New("flashkv: sub-unit program not supported")
	errChipUnaligned = errors.New("flashkv: erase offset not unit-aligned")
	errChipBusy      = errors.New("flashkv: command issued while busy")
)

// Chip is a simulated NOR flash part implementing Device, backed by any
// ReadWriterAt. It enforces the command-level rules a real part enforces
// (page boundaries, sector alignment, no commands while busy) and models
// program semantics faithfully: programming only clears bits.
type Chip struct {
	eraseUnitSize, writeUnitSize, size int64

	subUnitWrites bool

	backing ReadWriterAt
	units   []*EraseUnit

	// Remaining Busy() polls that report true for the command in flight.
	busyPolls int

	lock sync.Mutex
}

func NewChip(eraseUnitSize, writeUnitSize, size int64, subUnitWrites bool, backing ReadWriterAt) *Chip {
	if eraseUnitSize <= 0 || writeUnitSize <= 0 {
		panic("unit sizes MUST be positive")
	}
	if eraseUnitSize%writeUnitSize != 0 {
		panic("eraseUnitSize MUST be a multiple of writeUnitSize")
	}
	if size%eraseUnitSize != 0 {
		panic("size MUST be a multiple of eraseUnitSize")
	}

	numUnits := int(size / eraseUnitSize)

	c := &Chip{
		eraseUnitSize: eraseUnitSize,
		writeUnitSize: writeUnitSize,
		size:          size,
		subUnitWrites: subUnitWrites,
		backing:       backing,
		units:         make([]*EraseUnit, numUnits),
	}

	for i := range c.units {
		offset := int64(i) * eraseUnitSize
		c.units[i] = NewEraseUnit(
			eraseUnitSize, NewOffsetReadWriterAt(backing, offset))
	}

	return c
}

func (c *Chip) Capacity() int64 {
	return c.size
}

func (c *Chip) EraseUnitSize() int64 {
	return c.eraseUnitSize
}

func (c *Chip) WriteUnitSize() int64 {
	return c.writeUnitSize
}

func (c *Chip) SubUnitWrites() bool {
	return c.subUnitWrites
}

func (c *Chip) ReadAt(p []byte, off int64) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.busyPolls > 0 {
		return 0, errChipBusy
	}
	if off < 0 || off+int64(len(p)) > c.size {
		return 0, errChipRange
	}
	return c.backing.ReadAt(p, off)
}

func (c *Chip) PageProgram(off int64, p []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.busyPolls > 0 {
		return errChipBusy
	}
	if off < 0 || off+int64(len(p)) > c.size {
		return errChipRange
	}
	if off%c.writeUnitSize+int64(len(p)) > c.writeUnitSize {
		return errChipPageCross
	}
	if !c.subUnitWrites && (off%c.writeUnitSize != 0 || int64(len(p)) != c.writeUnitSize) {
		return errChipSubUnit
	}
	if len(p) == 0 {
		return nil
	}

	unit := off / c.eraseUnitSize
	if err := c.units[unit].Program(p, off-unit*c.eraseUnitSize); err != nil {
		return err
	}
	c.busyPolls = programBusyPolls
	return nil
}

func (c *Chip) SectorErase(off int64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.busyPolls > 0 {
		return errChipBusy
	}
	if off < 0 || off+c.eraseUnitSize > c.size {
		return errChipRange
	}
	if off%c.eraseUnitSize != 0 {
		return errChipUnaligned
	}

	if err := c.units[off/c.eraseUnitSize].Erase(); err != nil {
		return err
	}
	c.busyPolls = eraseBusyPolls
	return nil
}

func (c *Chip) Busy() (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.busyPolls > 0 {
		c.busyPolls--
		return true, nil
	}
	return false, nil
}
