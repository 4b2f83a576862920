package geometry

import (
	"github.com/twpayne/go-geom/xy/lineintersector"
)

// IsSimple reports whether the closed ring has no self-intersections. Every
// pair of non-adjacent edges is tested, so this is quadratic in the number
// of vertices.
func IsSimple(ring []XY) bool {
	r := dedupe(Close(append([]XY(nil), ring...)))
	edges := len(r) - 1
	if edges < 4 {
		// a triangle (or anything smaller) cannot cross itself
		return true
	}
	for i := 0; i < edges; i++ {
		for j := i + 2; j < edges; j++ {
			if i == 0 && j == edges-1 {
				continue // first and last edge share the closing vertex
			}
			if edgesTouch(r[i], r[i+1], r[j], r[j+1]) {
				return false
			}
		}
	}
	return true
}

// edgesTouch reports whether segments p1p2 and p3p4 meet, including
// collinear overlap and shared endpoints.
func edgesTouch(p1, p2, p3, p4 XY) bool {
	res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{},
		p1.coord(), p2.coord(), p3.coord(), p4.coord())
	return res.HasIntersection()
}
