package flashkv

// EraseUnit models a single erase unit of a NOR array. Programs can only
// clear bits within the unit; only Erase sets them back.
type EraseUnit struct {
	size int64

	backing ReadWriterAt
}

func NewEraseUnit(size int64, backing ReadWriterAt) *EraseUnit {
	u := &EraseUnit{
		size:    size,
		backing: backing,
	}

	return u
}

func (u *EraseUnit) Erase() error {
	_, err := WriteErased(u.backing, 0, u.size)
	return err
}

// Program ANDs p into the current content at off. Bits already cleared
// stay cleared regardless of p, exactly as the physical cells behave.
func (u *EraseUnit) Program(p []byte, off int64) error {
	cur := make([]byte, len(p))
	if _, err := u.backing.ReadAt(cur, off); err != nil {
		return err
	}
	for i := range cur {
		cur[i] &= p[i]
	}
	_, err := u.backing.WriteAt(cur, off)
	return err
}

func (u *EraseUnit) ReadAt(p []byte, off int64) (int, error) {
	return u.backing.ReadAt(p, off)
}
