package pipeline

import (
	"time"

	"sar-watermap/internal/geojson"
	"sar-watermap/internal/raster"
	"sar-watermap/internal/threshold"
	"sar-watermap/internal/vectorize"
	"sar-watermap/pkg/geometry"
)

// DetectionResult is the complete outcome of one pipeline run. It is
// owned by the caller; the pipeline keeps no reference to it.
type DetectionResult struct {
	// Acquisition identifies the source scene.
	Acquisition     string    `json:"acquisition,omitempty"`
	AcquisitionDate time.Time `json:"acquisition_date,omitempty"`

	Polygons  []vectorize.WaterPolygon `json:"-"`
	Threshold threshold.Threshold      `json:"threshold"`

	// Mask is the refined water mask, kept for preview rendering.
	Mask *raster.Bitmask `json:"-"`

	WaterAreaKM2    float64 `json:"water_area_km2"`
	WaterPercentage float64 `json:"water_percentage"`

	ProcessingSeconds float64            `json:"processing_time_seconds"`
	ParametersUsed    ResolvedParameters `json:"parameters_used"`

	// Warning carries non-fatal conditions such as an unreliable
	// automatic threshold. Empty when the run was clean.
	Warning string `json:"warning,omitempty"`
}

// FeatureCollection renders the polygon collection as a GeoJSON
// document. Each feature carries its source component label and exact
// pixel-derived area.
func (r *DetectionResult) FeatureCollection() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range r.Polygons {
		rings := make([][]geometry.Point2D, 0, 1+len(p.Holes))
		rings = append(rings, p.Shell)
		rings = append(rings, p.Holes...)

		feature, err := geojson.NewPolygonFeature(rings, map[string]any{
			"component": p.Component,
			"area_km2":  p.AreaKM2,
		})
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, feature)
	}
	return fc, nil
}
