package flashkv

// Region describes the window of the flash device assigned to the storage
// engine: where it starts, how big it is, and the erase/write granularity
// of the part underneath. It is validated once at construction and
// immutable afterwards; the engine queries it at initialization to plan
// its record layout and garbage-collection unit size.
type Region struct {
	base   int64
	length int64

	eraseUnitSize int64
	writeUnitSize int64
}

// NewRegion validates and builds a Region. capacity is the addressable
// size of the device, as reported by the hardware.
func NewRegion(base, length, eraseUnitSize, writeUnitSize, capacity int64) (*Region, error) {
	switch {
	case base < 0:
		return nil, ErrInvalidRegion.New("base %d is negative", base)
	case length <= 0:
		return nil, ErrInvalidRegion.New("length %d is not positive", length)
	case eraseUnitSize <= 0:
		return nil, ErrInvalidRegion.New("erase unit size %d is not positive", eraseUnitSize)
	case writeUnitSize <= 0:
		return nil, ErrInvalidRegion.New("write unit size %d is not positive", writeUnitSize)
	case eraseUnitSize%writeUnitSize != 0:
		return nil, ErrInvalidRegion.New(
			"erase unit size %d is not a multiple of write unit size %d",
			eraseUnitSize, writeUnitSize)
	case length%eraseUnitSize != 0:
		return nil, ErrInvalidRegion.New(
			"length %d is not a multiple of erase unit size %d", length, eraseUnitSize)
	case base+length > capacity:
		return nil, ErrInvalidRegion.New(
			"window [%d, %d) exceeds device capacity %d", base, base+length, capacity)
	}

	return &Region{
		base:          base,
		length:        length,
		eraseUnitSize: eraseUnitSize,
		writeUnitSize: writeUnitSize,
	}, nil
}

// Base returns the device offset where the window starts.
func (r *Region) Base() int64 {
	return r.base
}

// Length returns the size of the window in bytes.
func (r *Region) Length() int64 {
	return r.length
}

// EraseUnitSize returns the erase granularity of the part.
func (r *Region) EraseUnitSize() int64 {
	return r.eraseUnitSize
}

// WriteUnitSize returns the program granularity of the part.
func (r *Region) WriteUnitSize() int64 {
	return r.writeUnitSize
}

// EraseUnitCount returns the number of erase units in the window.
func (r *Region) EraseUnitCount() int {
	return int(r.length / r.eraseUnitSize)
}

// Contains reports whether [off, off+length) lies fully within the window.
// Offsets are region-relative.
func (r *Region) Contains(off, length int64) bool {
	return off >= 0 && length >= 0 && off <= r.length && length <= r.length-off
}

// IsEraseAligned reports whether off and length are both exact multiples
// of the erase unit size.
func (r *Region) IsEraseAligned(off, length int64) bool {
	return off%r.eraseUnitSize == 0 && length%r.eraseUnitSize == 0
}
