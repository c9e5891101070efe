package vectorize

import (
	"math"

	"sar-watermap/pkg/geometry"
)

// simplifyRing reduces the vertex count of a closed ring using
// Douglas-Peucker. The ring is split at its first vertex and at the
// vertex farthest from it, each half is simplified as an open path,
// and the halves are rejoined. Splitting at two anchors keeps the
// simplification stable for closed shapes.
func simplifyRing(ring []geometry.Point2D, epsilon float64) []geometry.Point2D {
	if epsilon <= 0 || len(ring) <= 4 {
		return ring
	}

	far := 0
	farDist := -1.0
	for i, p := range ring {
		d := p.Distance(ring[0])
		if d > farDist {
			farDist = d
			far = i
		}
	}
	if far == 0 {
		return ring
	}

	first := append([]geometry.Point2D{}, ring[:far+1]...)
	second := append([]geometry.Point2D{}, ring[far:]...)
	second = append(second, ring[0])

	a := simplifyPath(first, epsilon)
	b := simplifyPath(second, epsilon)

	// Drop the duplicated join vertices when rejoining.
	out := make([]geometry.Point2D, 0, len(a)+len(b)-2)
	out = append(out, a...)
	out = append(out, b[1:len(b)-1]...)

	if len(out) < 3 {
		return ring
	}
	return out
}

// simplifyPath reduces the number of vertices using the Douglas-Peucker
// algorithm. Endpoints are always kept.
func simplifyPath(path []geometry.Point2D, epsilon float64) []geometry.Point2D {
	if len(path) <= 2 {
		return path
	}

	// Find point with maximum distance from line between first and last points
	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	// If max distance is greater than epsilon, recursively simplify
	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)

		// Build result (avoid duplicating middle point)
		result := make([]geometry.Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points between first and last are within epsilon, return just endpoints
	return []geometry.Point2D{path[0], path[end]}
}

// perpendicularDistance calculates the perpendicular distance from point p to line a-b.
func perpendicularDistance(p, a, b geometry.Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		// a and b are the same point
		return p.Distance(a)
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}
