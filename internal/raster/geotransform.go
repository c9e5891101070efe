package raster

import (
	"math"

	"sar-watermap/pkg/geometry"
)

// Geotransform maps pixel row/column indices to geographic coordinates.
// The origin is the top-left corner of the top-left pixel. PixelHeight
// is negative for north-up rasters. GroundResolution is the pixel edge
// length on the ground in meters (nominally 10 m for Sentinel-1 IW).
type Geotransform struct {
	OriginX          float64 `json:"origin_x"`
	OriginY          float64 `json:"origin_y"`
	PixelWidth       float64 `json:"pixel_width"`
	PixelHeight      float64 `json:"pixel_height"`
	GroundResolution float64 `json:"ground_resolution_m"`
	CRS              string  `json:"crs"`
}

// PixelToGeo converts fractional pixel coordinates to geographic
// coordinates. Pixel (0, 0) maps to the transform origin.
func (t Geotransform) PixelToGeo(px, py float64) geometry.Point2D {
	return geometry.Point2D{
		X: t.OriginX + px*t.PixelWidth,
		Y: t.OriginY + py*t.PixelHeight,
	}
}

// GeoToPixel converts geographic coordinates to fractional pixel
// coordinates.
func (t Geotransform) GeoToPixel(p geometry.Point2D) (float64, float64) {
	return (p.X - t.OriginX) / t.PixelWidth, (p.Y - t.OriginY) / t.PixelHeight
}

// PixelAreaM2 returns the ground area of one pixel in square meters.
func (t Geotransform) PixelAreaM2() float64 {
	return t.GroundResolution * t.GroundResolution
}

// IsFinite reports whether every numeric field is finite and the pixel
// dimensions are usable.
func (t Geotransform) IsFinite() bool {
	for _, v := range []float64{t.OriginX, t.OriginY, t.PixelWidth, t.PixelHeight, t.GroundResolution} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return t.PixelWidth != 0 && t.PixelHeight != 0 && t.GroundResolution > 0
}
