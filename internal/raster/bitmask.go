package raster

// Bitmask is a binary raster aligned with a Grid.
type Bitmask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewBitmask creates an all-false bitmask.
func NewBitmask(width, height int) *Bitmask {
	return &Bitmask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// At returns the bit at (x, y). Out-of-bounds coordinates read false.
func (m *Bitmask) At(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set stores a bit at (x, y).
func (m *Bitmask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of true bits.
func (m *Bitmask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the bitmask.
func (m *Bitmask) Clone() *Bitmask {
	out := &Bitmask{Width: m.Width, Height: m.Height, Bits: make([]bool, len(m.Bits))}
	copy(out.Bits, m.Bits)
	return out
}

// Equal reports whether two bitmasks have identical shape and bits.
func (m *Bitmask) Equal(other *Bitmask) bool {
	if m.Width != other.Width || m.Height != other.Height {
		return false
	}
	for i, b := range m.Bits {
		if b != other.Bits[i] {
			return false
		}
	}
	return true
}
