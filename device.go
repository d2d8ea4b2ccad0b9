package flashkv

// ErasedByte is the value every byte of a NOR erase unit holds after an
// erase, before any program command touches it.
const ErasedByte byte = 0xFF

// Device is the hardware flash controller the adapter drives: the
// vendor's documented command set reduced to the primitives the adapter
// needs. Offsets are absolute device offsets. Program and erase commands
// only start the operation; completion is observed by polling Busy.
type Device interface {
	// Capacity returns the addressable size of the part in bytes.
	Capacity() int64

	// EraseUnitSize returns the sector size, the smallest range one
	// erase command covers.
	EraseUnitSize() int64

	// WriteUnitSize returns the page size, the native grouping for
	// program commands.
	WriteUnitSize() int64

	// SubUnitWrites reports whether the part accepts program commands
	// shorter than a full write unit. Parts that don't force the adapter
	// to fail closed on unaligned writes.
	SubUnitWrites() bool

	// ReadAt copies len(p) bytes starting at off into p. Reads are
	// synchronous and side-effect-free; on parts with memory-mapped
	// flash this is a plain copy.
	ReadAt(p []byte, off int64) (int, error)

	// PageProgram issues a program command for p at off. The range must
	// not cross a write unit boundary.
	PageProgram(off int64, p []byte) error

	// SectorErase issues an erase command for the erase unit starting at
	// off, which must be erase-unit-aligned.
	SectorErase(off int64) error

	// Busy polls the part's status flag. A program or erase is complete
	// once Busy reports false.
	Busy() (bool, error)
}
