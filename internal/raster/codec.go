package raster

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// gridMagic identifies the on-disk grid format.
var gridMagic = [4]byte{'S', 'W', 'G', '1'}

// maxGridDim bounds accepted dimensions when reading, as a guard
// against corrupt headers.
const maxGridDim = 1 << 20

// WriteGrid serializes a grid in the native binary format: 4-byte
// magic, uint32 width and height, then width*height little-endian
// float64 samples in row-major order.
func WriteGrid(w io.Writer, g *Grid) error {
	if g.Empty() {
		return ErrEmptyRaster
	}
	if _, err := w.Write(gridMagic[:]); err != nil {
		return fmt.Errorf("write grid header: %w", err)
	}
	dims := [2]uint32{uint32(g.Width), uint32(g.Height)}
	if err := binary.Write(w, binary.LittleEndian, dims); err != nil {
		return fmt.Errorf("write grid dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, g.Data); err != nil {
		return fmt.Errorf("write grid samples: %w", err)
	}
	return nil
}

// ReadGrid deserializes a grid written by WriteGrid.
func ReadGrid(r io.Reader) (*Grid, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read grid header: %w", err)
	}
	if magic != gridMagic {
		return nil, fmt.Errorf("read grid header: bad magic %q", magic)
	}

	var dims [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read grid dimensions: %w", err)
	}
	w, h := int(dims[0]), int(dims[1])
	if w <= 0 || h <= 0 || w > maxGridDim || h > maxGridDim {
		return nil, fmt.Errorf("read grid dimensions: implausible size %dx%d", w, h)
	}

	g := NewGrid(w, h)
	if err := binary.Read(r, binary.LittleEndian, g.Data); err != nil {
		return nil, fmt.Errorf("read grid samples: %w", err)
	}
	return g, nil
}

// SaveGrid writes a grid to a file.
func SaveGrid(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create grid file: %w", err)
	}
	defer f.Close()

	if err := WriteGrid(f, g); err != nil {
		return err
	}
	return f.Close()
}

// LoadGrid reads a grid from a file.
func LoadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer f.Close()

	return ReadGrid(f)
}
