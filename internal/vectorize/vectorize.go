// Package vectorize traces refined water masks into simplified
// geographic polygons with area statistics.
package vectorize

import (
	"sar-watermap/internal/mask"
	"sar-watermap/internal/raster"
	"sar-watermap/pkg/geometry"
)

// Options configures vectorization.
type Options struct {
	// SimplifyTolerancePx is the Douglas-Peucker tolerance in pixel
	// units. One pixel removes raster staircasing without visibly
	// distorting shape.
	SimplifyTolerancePx float64

	// ClipBounds, when non-empty, clips output polygons to this
	// geographic rectangle (normally the AOI bounding box).
	ClipBounds geometry.Rect
}

// DefaultOptions returns sensible defaults for vectorization.
func DefaultOptions() Options {
	return Options{SimplifyTolerancePx: 1.0}
}

// WaterPolygon is one vectorized water body in geographic coordinates.
// Holes are interior rings (land inclusions), not separate features.
type WaterPolygon struct {
	Shell     []geometry.Point2D
	Holes     [][]geometry.Point2D
	Component int     // source connected-component label
	AreaKM2   float64 // exact pixel-derived area of this polygon
}

// Result is the polygon collection plus summary statistics.
type Result struct {
	Polygons []WaterPolygon

	// PixelCount is the number of set pixels in the source mask.
	PixelCount int

	// WaterAreaKM2 is PixelCount times the pixel ground area. It is
	// independent of simplification tolerance.
	WaterAreaKM2 float64
}

// Trace converts a refined binary mask into simplified geographic
// polygons. For a fixed mask and geotransform the output is exactly
// reproducible: boundary edges are generated and walked in raster scan
// order.
func Trace(m *raster.Bitmask, gt raster.Geotransform, opts Options) *Result {
	res := &Result{
		PixelCount:   m.Count(),
		WaterAreaKM2: float64(m.Count()) * gt.PixelAreaM2() / 1e6,
	}
	if res.PixelCount == 0 {
		return res
	}

	labels, _ := mask.LabelComponents(m)
	rings := traceRings(m, labels)
	res.Polygons = assemblePolygons(rings, gt, opts)
	return res
}

// ring is a closed boundary loop in pixel-corner coordinates.
type ring struct {
	points    []geometry.Point2D
	component int
	areaPx    float64 // signed: positive for shells, negative for holes
}

// boundaryEdge is one directed pixel-crack segment, oriented so the
// water pixel that generated it lies on its left.
type boundaryEdge struct {
	from, to  int // corner keys, key = cornerY*(width+1)+cornerX
	component int
	used      bool
}

// traceRings extracts all closed boundary loops of the mask. Each set
// pixel contributes a directed edge for every side facing background.
// Stitching the edges yields shells with positive shoelace area in
// pixel space and hole rings with negative area.
func traceRings(m *raster.Bitmask, labels []int) []ring {
	w, h := m.Width, m.Height
	cw := w + 1 // corners per row

	var edges []boundaryEdge
	outgoing := make(map[int][]int)

	addEdge := func(fx, fy, tx, ty, component int) {
		from := fy*cw + fx
		to := ty*cw + tx
		outgoing[from] = append(outgoing[from], len(edges))
		edges = append(edges, boundaryEdge{from: from, to: to, component: component})
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.At(x, y) {
				continue
			}
			comp := labels[y*w+x]
			if !m.At(x, y-1) { // top
				addEdge(x, y, x+1, y, comp)
			}
			if !m.At(x+1, y) { // right
				addEdge(x+1, y, x+1, y+1, comp)
			}
			if !m.At(x, y+1) { // bottom
				addEdge(x+1, y+1, x, y+1, comp)
			}
			if !m.At(x-1, y) { // left
				addEdge(x, y+1, x, y, comp)
			}
		}
	}

	corner := func(key int) geometry.Point2D {
		return geometry.Point2D{X: float64(key % cw), Y: float64(key / cw)}
	}

	var rings []ring
	for start := range edges {
		if edges[start].used {
			continue
		}

		// In-degree equals out-degree at every corner, so the walk can
		// only run out of continuations back at the starting corner,
		// which closes the loop.
		var pts []geometry.Point2D
		cur := start
		for cur >= 0 {
			e := &edges[cur]
			e.used = true
			pts = append(pts, corner(e.from))
			cur = nextEdge(edges, outgoing[e.to], edgeDir(*e))
		}

		rings = append(rings, ring{
			points:    pts,
			component: edges[start].component,
			areaPx:    geometry.SignedArea(pts),
		})
	}

	return rings
}

// edgeDir returns the unit direction of an edge. Corner rows are at
// least two keys apart, so the key difference identifies the axis.
func edgeDir(e boundaryEdge) geometry.Point2D {
	switch d := e.to - e.from; {
	case d == 1:
		return geometry.Point2D{X: 1}
	case d == -1:
		return geometry.Point2D{X: -1}
	case d > 1:
		return geometry.Point2D{Y: 1}
	default:
		return geometry.Point2D{Y: -1}
	}
}

// nextEdge picks the unused continuation at a corner, or -1 when the
// loop is closed. Where two water pixels touch only diagonally the
// corner has two outgoing edges; the sharpest positive turn relative
// to the incoming direction is taken, so each loop hugs its own pixels
// and diagonal contacts trace as separate rings.
func nextEdge(edges []boundaryEdge, candidates []int, din geometry.Point2D) int {
	best := -1
	bestCross := 0.0

	for _, c := range candidates {
		if edges[c].used {
			continue
		}
		dout := edgeDir(edges[c])
		cross := din.X*dout.Y - din.Y*dout.X
		if best < 0 || cross > bestCross {
			best = c
			bestCross = cross
		}
	}
	return best
}

// assemblePolygons groups rings into polygons (shells with their
// holes), simplifies, transforms to geographic coordinates and clips.
func assemblePolygons(rings []ring, gt raster.Geotransform, opts Options) []WaterPolygon {
	pixelKM2 := gt.PixelAreaM2() / 1e6

	var polys []WaterPolygon
	shellIdx := make([]int, 0, len(rings)) // polygon index -> ring index
	holesPx := make([][][]geometry.Point2D, 0, len(rings))

	for i := range rings {
		if rings[i].areaPx > 0 {
			polys = append(polys, WaterPolygon{
				Component: rings[i].component,
				AreaKM2:   rings[i].areaPx * pixelKM2,
			})
			shellIdx = append(shellIdx, i)
			holesPx = append(holesPx, nil)
		}
	}

	// Attach each hole to the shell of the same component containing
	// it. The representative point sits a quarter pixel inside the
	// water side of the hole's first edge, safely off any ring vertex.
	for i := range rings {
		r := &rings[i]
		if r.areaPx >= 0 || len(r.points) < 2 {
			continue
		}
		mid := geometry.Centroid(r.points[:2])
		d := r.points[1].Sub(r.points[0])
		rep := geometry.Point2D{X: mid.X - 0.25*d.Y, Y: mid.Y + 0.25*d.X}

		for p := range polys {
			if rings[shellIdx[p]].component != r.component {
				continue
			}
			if geometry.PointInPolygon(rep, rings[shellIdx[p]].points) {
				holesPx[p] = append(holesPx[p], r.points)
				polys[p].AreaKM2 += r.areaPx * pixelKM2
				break
			}
		}
	}

	// Simplify in pixel space, then project and clip.
	clip := opts.ClipBounds.Width > 0 && opts.ClipBounds.Height > 0
	out := make([]WaterPolygon, 0, len(polys))
	for p := range polys {
		shell := toGeo(simplifyRing(rings[shellIdx[p]].points, opts.SimplifyTolerancePx), gt)
		if clip {
			shell = geometry.ClipToRect(shell, opts.ClipBounds)
		}
		if len(shell) < 3 {
			continue
		}

		poly := polys[p]
		poly.Shell = shell
		for _, hpx := range holesPx[p] {
			hole := toGeo(simplifyRing(hpx, opts.SimplifyTolerancePx), gt)
			if clip {
				hole = geometry.ClipToRect(hole, opts.ClipBounds)
			}
			if len(hole) >= 3 {
				poly.Holes = append(poly.Holes, hole)
			}
		}
		out = append(out, poly)
	}

	return out
}

// toGeo converts pixel-corner coordinates to geographic coordinates.
func toGeo(ring []geometry.Point2D, gt raster.Geotransform) []geometry.Point2D {
	outPts := make([]geometry.Point2D, len(ring))
	for i, p := range ring {
		outPts[i] = gt.PixelToGeo(p.X, p.Y)
	}
	return outPts
}
