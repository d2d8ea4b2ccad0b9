package flashkv

import (
	"errors"
	"testing"

	"github.com/zeebo/assert"
)

const (
	testEraseUnit = 4096
	testWriteUnit = 256
	testChipSize  = 8192
)

var errInjected = errors.New("injected backing failure")

func newTestChip() *Chip {
	return NewChip(testEraseUnit, testWriteUnit, testChipSize, true,
		NewMemBuffer(testChipSize))
}

func newTestController(t testing.TB, dev Device) *Controller {
	t.Helper()

	region, err := NewRegion(0, dev.Capacity(),
		dev.EraseUnitSize(), dev.WriteUnitSize(), dev.Capacity())
	assert.NoError(t, err)

	ctrl, err := NewController(dev, region)
	assert.NoError(t, err)
	t.Cleanup(func() { ctrl.Close() })

	return ctrl
}

// snapshot reads the chip's full contents directly, bypassing the
// controller, so tests can compare before/after states.
func snapshot(t testing.TB, chip *Chip) []byte {
	t.Helper()

	buf := make([]byte, chip.Capacity())
	_, err := chip.ReadAt(buf, 0)
	assert.NoError(t, err)
	return buf
}

func pattern(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}

// faultBacking passes writes through to a MemBuffer until its allowance
// runs out, then fails every write. Wrapping the backing is how faults
// are injected under the simulated chip.
type faultBacking struct {
	*MemBuffer
	writesLeft int
}

func (f *faultBacking) WriteAt(p []byte, off int64) (int, error) {
	if f.writesLeft <= 0 {
		return 0, errInjected
	}
	f.writesLeft--
	return f.MemBuffer.WriteAt(p, off)
}

// stubDevice scripts Device behavior for timeout and reentry tests.
// Reads always return erased bytes.
type stubDevice struct {
	capacity, eraseUnit, writeUnit int64

	program func(off int64, p []byte) error
	busy    func() (bool, error)
}

func (d *stubDevice) Capacity() int64      { return d.capacity }
func (d *stubDevice) EraseUnitSize() int64 { return d.eraseUnit }
func (d *stubDevice) WriteUnitSize() int64 { return d.writeUnit }
func (d *stubDevice) SubUnitWrites() bool  { return true }

func (d *stubDevice) ReadAt(p []byte, off int64) (int, error) {
	for i := range p {
		p[i] = ErasedByte
	}
	return len(p), nil
}

func (d *stubDevice) PageProgram(off int64, p []byte) error {
	if d.program != nil {
		return d.program(off, p)
	}
	return nil
}

func (d *stubDevice) SectorErase(off int64) error {
	return nil
}

func (d *stubDevice) Busy() (bool, error) {
	if d.busy != nil {
		return d.busy()
	}
	return false, nil
}
