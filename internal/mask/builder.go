// Package mask builds and refines the binary water candidate mask.
package mask

import (
	"sar-watermap/internal/raster"
)

// Criteria are the fully-resolved per-pixel classification limits.
// Water backscatter is low in both polarizations, the polarization
// difference stays small over open water, and water does not sit on
// steep terrain.
type Criteria struct {
	PrimaryMaxDB   float64 // primary polarization ceiling (dB)
	SecondaryMaxDB float64 // secondary polarization ceiling (dB)
	DiffMaxDB      float64 // primary - secondary ceiling (dB)
	SlopeMaxDeg    float64 // terrain slope ceiling (degrees)
}

// WaterMask is the candidate mask plus the threshold that produced it.
type WaterMask struct {
	Bits *raster.Bitmask

	// ThresholdDB is the primary threshold actually applied.
	ThresholdDB float64

	// Automatic is true when the threshold came from histogram
	// analysis rather than an operator override.
	Automatic bool
}

// Build classifies every pixel of the layer set against the criteria.
// A pixel is a water candidate only if it is marked valid, all three
// bands are finite there, and every criterion holds. The reduction is
// purely per-pixel with no ordering dependence.
func Build(set *raster.LayerSet, valid *raster.Bitmask, c Criteria, automatic bool) *WaterMask {
	w, h := set.Width(), set.Height()
	bits := raster.NewBitmask(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !valid.At(x, y) {
				continue
			}
			if !set.Primary.IsValid(x, y) || !set.Secondary.IsValid(x, y) || !set.Slope.IsValid(x, y) {
				continue
			}

			p := set.Primary.At(x, y)
			s := set.Secondary.At(x, y)

			water := p <= c.PrimaryMaxDB &&
				s <= c.SecondaryMaxDB &&
				p-s <= c.DiffMaxDB &&
				set.Slope.At(x, y) <= c.SlopeMaxDeg

			bits.Set(x, y, water)
		}
	}

	return &WaterMask{Bits: bits, ThresholdDB: c.PrimaryMaxDB, Automatic: automatic}
}
