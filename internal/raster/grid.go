// Package raster provides aligned floating-point grids and the
// geotransform that maps them to geographic coordinates.
package raster

import "math"

// Grid is a single-band raster of float64 samples in row-major order.
// NaN marks no-data pixels (outside sensor coverage or AOI footprint).
type Grid struct {
	Width  int
	Height int
	Data   []float64
}

// NewGrid creates a grid of the given size with all samples set to zero.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// NewGridNoData creates a grid with every sample set to NaN.
func NewGridNoData(width, height int) *Grid {
	g := NewGrid(width, height)
	for i := range g.Data {
		g.Data[i] = math.NaN()
	}
	return g
}

// At returns the sample at (x, y). The caller must keep coordinates in
// bounds.
func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// Set stores a sample at (x, y).
func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// IsValid reports whether the sample at (x, y) is finite.
func (g *Grid) IsValid(x, y int) bool {
	v := g.Data[y*g.Width+x]
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Empty reports whether the grid has no pixels.
func (g *Grid) Empty() bool {
	return g == nil || g.Width <= 0 || g.Height <= 0 || len(g.Data) == 0
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{Width: g.Width, Height: g.Height, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// SameShape reports whether two grids have identical dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return g != nil && other != nil && g.Width == other.Width && g.Height == other.Height
}

// BoxSmooth returns a copy of the grid with each sample replaced by the
// mean of the finite samples in a window x window neighborhood. NaN
// samples stay NaN. A window of 1 or less returns an unmodified copy.
func (g *Grid) BoxSmooth(window int) *Grid {
	if window <= 1 {
		return g.Clone()
	}
	r := window / 2
	out := NewGrid(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !g.IsValid(x, y) {
				out.Set(x, y, math.NaN())
				continue
			}
			var sum float64
			var n int
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= g.Width || ny < 0 || ny >= g.Height {
						continue
					}
					if g.IsValid(nx, ny) {
						sum += g.At(nx, ny)
						n++
					}
				}
			}
			out.Set(x, y, sum/float64(n))
		}
	}
	return out
}
