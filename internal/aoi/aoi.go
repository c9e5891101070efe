// Package aoi models the user-specified area of interest and its
// geodesic area.
package aoi

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s2"

	"sar-watermap/pkg/geometry"
)

// Externally enforced AOI area bounds in km². The detection core
// assumes its caller has already applied these.
const (
	MinAreaKM2 = 0.01
	MaxAreaKM2 = 2500
)

// earthRadiusKM is the mean Earth radius used to scale unit-sphere
// areas.
const earthRadiusKM = 6371.01

var (
	ErrDegenerate = errors.New("aoi: polygon has fewer than three vertices")
	ErrTooSmall   = fmt.Errorf("aoi: area below %v km2", MinAreaKM2)
	ErrTooLarge   = fmt.Errorf("aoi: area above %v km2", MaxAreaKM2)
)

// AreaOfInterest is a single WGS84 polygon, optionally with holes.
// Ring vertices are (longitude, latitude) pairs and do not repeat the
// first vertex.
type AreaOfInterest struct {
	Shell []geometry.Point2D
	Holes [][]geometry.Point2D
}

// New builds an AreaOfInterest from an outer ring and optional holes.
func New(shell []geometry.Point2D, holes ...[]geometry.Point2D) (*AreaOfInterest, error) {
	if len(shell) < 3 {
		return nil, ErrDegenerate
	}
	for _, h := range holes {
		if len(h) < 3 {
			return nil, ErrDegenerate
		}
	}
	return &AreaOfInterest{Shell: shell, Holes: holes}, nil
}

// Bounds returns the bounding box of the outer ring.
func (a *AreaOfInterest) Bounds() geometry.Rect {
	return geometry.BoundingBox(a.Shell)
}

// Contains reports whether a point lies inside the AOI (inside the
// shell and outside every hole).
func (a *AreaOfInterest) Contains(p geometry.Point2D) bool {
	rings := make([][]geometry.Point2D, 0, 1+len(a.Holes))
	rings = append(rings, a.Shell)
	rings = append(rings, a.Holes...)
	return geometry.PointInRings(p, rings)
}

// AreaKM2 computes the geodesic area of the AOI on the sphere: the
// shell area minus hole areas.
func (a *AreaOfInterest) AreaKM2() float64 {
	area := loopAreaKM2(a.Shell)
	for _, h := range a.Holes {
		area -= loopAreaKM2(h)
	}
	if area < 0 {
		return 0
	}
	return area
}

// Validate checks the externally enforced area range.
func (a *AreaOfInterest) Validate() error {
	area := a.AreaKM2()
	switch {
	case area < MinAreaKM2:
		return fmt.Errorf("%w (got %.4f km2)", ErrTooSmall, area)
	case area > MaxAreaKM2:
		return fmt.Errorf("%w (got %.1f km2)", ErrTooLarge, area)
	}
	return nil
}

// loopAreaKM2 returns the unsigned spherical area of one ring in km².
func loopAreaKM2(ring []geometry.Point2D) float64 {
	pts := make([]s2.Point, len(ring))
	for i, p := range ring {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(p.Y, p.X))
	}
	loop := s2.LoopFromPoints(pts)
	// Normalize so the loop encloses the smaller of the two sphere
	// caps regardless of input winding.
	loop.Normalize()
	return loop.Area() * earthRadiusKM * earthRadiusKM
}
