// Package geojson provides the GeoJSON document types used at the API
// boundary: geometry parsing for requested areas and feature-collection
// output for detected water polygons.
package geojson

import (
	"encoding/json"
	"fmt"

	"sar-watermap/pkg/geometry"
)

// Geometry represents a GeoJSON geometry. Coordinates stay raw so one
// type covers every geometry kind during decoding.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"` // "Feature"
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection document.
type FeatureCollection struct {
	Type     string    `json:"type"` // "FeatureCollection"
	Features []Feature `json:"features"`
}

// NewFeatureCollection creates an empty collection with a non-nil
// feature slice, so an empty result still serializes as [].
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// NewPolygonGeometry encodes polygon rings (shell first, then holes)
// as a GeoJSON Polygon. Rings are closed on output.
func NewPolygonGeometry(rings [][]geometry.Point2D) (*Geometry, error) {
	coords := make([][][2]float64, len(rings))
	for i, ring := range rings {
		closed := make([][2]float64, 0, len(ring)+1)
		for _, p := range ring {
			closed = append(closed, [2]float64{p.X, p.Y})
		}
		if len(ring) > 0 {
			closed = append(closed, [2]float64{ring[0].X, ring[0].Y})
		}
		coords[i] = closed
	}

	raw, err := json.Marshal(coords)
	if err != nil {
		return nil, fmt.Errorf("encode polygon coordinates: %w", err)
	}
	return &Geometry{Type: "Polygon", Coordinates: raw}, nil
}

// NewPolygonFeature wraps polygon rings and properties as a Feature.
func NewPolygonFeature(rings [][]geometry.Point2D, props map[string]any) (Feature, error) {
	geom, err := NewPolygonGeometry(rings)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Type: "Feature", Geometry: geom, Properties: props}, nil
}

// DecodePolygon extracts the rings of a Polygon geometry. A closing
// vertex equal to the first is dropped. MultiPolygon input yields the
// rings of its first polygon; requests are limited to a single area.
func DecodePolygon(g *Geometry) ([][]geometry.Point2D, error) {
	if g == nil {
		return nil, fmt.Errorf("decode polygon: missing geometry")
	}

	switch g.Type {
	case "Polygon":
		var coords [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode polygon coordinates: %w", err)
		}
		return ringsFromCoords(coords)

	case "MultiPolygon":
		var coords [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("decode multipolygon coordinates: %w", err)
		}
		if len(coords) == 0 {
			return nil, fmt.Errorf("decode multipolygon: no polygons")
		}
		return ringsFromCoords(coords[0])

	default:
		return nil, fmt.Errorf("decode polygon: unsupported geometry type %q", g.Type)
	}
}

func ringsFromCoords(coords [][][2]float64) ([][]geometry.Point2D, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("decode polygon: no rings")
	}

	rings := make([][]geometry.Point2D, len(coords))
	for i, ring := range coords {
		pts := make([]geometry.Point2D, 0, len(ring))
		for _, c := range ring {
			pts = append(pts, geometry.Point2D{X: c[0], Y: c[1]})
		}
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 3 {
			return nil, fmt.Errorf("decode polygon: ring %d has %d distinct vertices", i, len(pts))
		}
		rings[i] = pts
	}
	return rings, nil
}
