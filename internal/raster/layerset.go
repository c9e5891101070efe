package raster

import (
	"errors"
	"fmt"
	"time"
)

// Structural input errors. Any of these abort the pipeline before the
// first stage runs.
var (
	ErrMissingLayer    = errors.New("raster: missing required layer")
	ErrEmptyRaster     = errors.New("raster: empty raster")
	ErrShapeMismatch   = errors.New("raster: layer shapes do not match")
	ErrBadGeotransform = errors.New("raster: non-finite geotransform")
)

// LayerSet holds the co-registered grids the detection pipeline
// consumes: primary polarization (VV, dB), secondary polarization
// (VH, dB) and terrain slope (degrees). All three share one shape and
// one geotransform.
type LayerSet struct {
	Primary   *Grid
	Secondary *Grid
	Slope     *Grid
	Transform Geotransform

	// Acquisition metadata carried through to the result.
	Acquisition string
	AcquiredAt  time.Time
}

// Validate checks the structural invariants of the layer set. It
// returns a wrapped sentinel error describing the first violation.
func (s *LayerSet) Validate() error {
	layers := []struct {
		name string
		grid *Grid
	}{
		{"primary", s.Primary},
		{"secondary", s.Secondary},
		{"slope", s.Slope},
	}

	for _, l := range layers {
		if l.grid == nil {
			return fmt.Errorf("%w: %s", ErrMissingLayer, l.name)
		}
		if l.grid.Empty() {
			return fmt.Errorf("%w: %s", ErrEmptyRaster, l.name)
		}
	}

	for _, l := range layers[1:] {
		if !s.Primary.SameShape(l.grid) {
			return fmt.Errorf("%w: primary is %dx%d, %s is %dx%d",
				ErrShapeMismatch, s.Primary.Width, s.Primary.Height,
				l.name, l.grid.Width, l.grid.Height)
		}
	}

	if !s.Transform.IsFinite() {
		return fmt.Errorf("%w: %+v", ErrBadGeotransform, s.Transform)
	}

	return nil
}

// Width returns the shared grid width.
func (s *LayerSet) Width() int { return s.Primary.Width }

// Height returns the shared grid height.
func (s *LayerSet) Height() int { return s.Primary.Height }
