package geometry

import "math"

// SignedArea computes the signed shoelace area of a ring. The result is
// positive for counter-clockwise rings (in a y-up coordinate system) and
// negative for clockwise rings. The ring does not need to repeat its
// first vertex.
func SignedArea(ring []Point2D) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PointInRings tests if a point is inside a polygon with holes. The
// first ring is the outer shell, the remaining rings are holes.
func PointInRings(p Point2D, rings [][]Point2D) bool {
	if len(rings) == 0 || !PointInPolygon(p, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if PointInPolygon(p, hole) {
			return false
		}
	}
	return true
}

// ClipToRect clips a ring against an axis-aligned rectangle using the
// Sutherland-Hodgman algorithm. Returns nil if nothing remains.
func ClipToRect(ring []Point2D, r Rect) []Point2D {
	if len(ring) < 3 {
		return nil
	}

	output := make([]Point2D, len(ring))
	copy(output, ring)

	clip := r.Corners()
	for i := 0; i < len(clip); i++ {
		if len(output) == 0 {
			return nil
		}
		output = clipRingByEdge(output, clip[i], clip[(i+1)%len(clip)])
	}

	if len(output) < 3 {
		return nil
	}
	return output
}

// clipRingByEdge clips a ring against a single directed edge. Points on
// the left side of the edge are kept.
func clipRingByEdge(ring []Point2D, edgeStart, edgeEnd Point2D) []Point2D {
	var clipped []Point2D

	for i := 0; i < len(ring); i++ {
		current := ring[i]
		next := ring[(i+1)%len(ring)]

		currentInside := isInsideEdge(current, edgeStart, edgeEnd)
		nextInside := isInsideEdge(next, edgeStart, edgeEnd)

		if currentInside {
			clipped = append(clipped, current)
			if !nextInside {
				// Exiting: add intersection point
				if intersection, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
					clipped = append(clipped, intersection)
				}
			}
		} else if nextInside {
			// Entering: add intersection point
			if intersection, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
				clipped = append(clipped, intersection)
			}
		}
	}

	return clipped
}

// isInsideEdge checks if a point is on the inside (left side) of the directed edge.
// The clip ring is assumed to be in counter-clockwise order.
func isInsideEdge(p, edgeStart, edgeEnd Point2D) bool {
	return (edgeEnd.X-edgeStart.X)*(p.Y-edgeStart.Y)-
		(edgeEnd.Y-edgeStart.Y)*(p.X-edgeStart.X) >= 0
}

// lineIntersection computes the intersection point of line segment p1-p2
// with line segment e1-e2. Returns the point and true if they intersect.
func lineIntersection(p1, p2, e1, e2 Point2D) (Point2D, bool) {
	x1, y1 := p1.X, p1.Y
	x2, y2 := p2.X, p2.Y
	x3, y3 := e1.X, e1.Y
	x4, y4 := e2.X, e2.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < 1e-12 {
		// Lines are parallel
		return Point2D{}, false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom

	return Point2D{
		X: x1 + t*(x2-x1),
		Y: y1 + t*(y2-y1),
	}, true
}
