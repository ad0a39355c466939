package glyphmesh

import (
	"fmt"
	"sort"
)

// AddHole merges a hole into its outer polygon by a pair of bridge edges, so that the result is a single weakly simple polygon that can be triangulated with Triangulate. The hole must lie inside the outer polygon and have the opposite winding. The result has len(outer)+len(hole)+2 vertices: the bridge's end points appear twice.
func AddHole(outer, hole Polygon, margin float64) (Polygon, error) {
	merged, _, err := addHole(outer, nil, hole, nil, nil, margin)
	return merged, err
}

// addHole is AddHole that keeps track of vertex ids, which are duplicated along with the bridge end points. Obstacles are holes that are not yet merged and may not be crossed by the bridge.
func addHole(outer Polygon, outerIDs []int, hole Polygon, holeIDs []int, obstacles []Polygon, margin float64) (Polygon, []int, error) {
	if len(outer) < 3 || len(hole) < 3 {
		return nil, nil, fmt.Errorf("hole of %d vertices in polygon of %d vertices: %w", len(hole), len(outer), ErrTriangulationFailed)
	}

	m, h := len(outer), len(hole)
	winding := outer.Winding()
	candidates := make([]int, m)
	for rot := 0; rot < h; rot++ {
		p := hole[rot]
		for k := range candidates {
			candidates[k] = k
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			di, dj := outer[candidates[i]].Sub(p), outer[candidates[j]].Sub(p)
			return di.Dot(di) < dj.Dot(dj)
		})

		for _, k := range candidates {
			if !validBridge(outer, k, hole, rot, obstacles, winding, margin) {
				continue
			}

			merged := make(Polygon, 0, m+h+2)
			merged = append(merged, outer[:k+1]...)
			merged = append(merged, hole[rot:]...)
			merged = append(merged, hole[:rot+1]...)
			merged = append(merged, outer[k:]...)

			var ids []int
			if outerIDs != nil && holeIDs != nil {
				ids = make([]int, 0, m+h+2)
				ids = append(ids, outerIDs[:k+1]...)
				ids = append(ids, holeIDs[rot:]...)
				ids = append(ids, holeIDs[:rot+1]...)
				ids = append(ids, outerIDs[k:]...)
			}
			Logger().Debug("bridge", "outer", k, "hole", rot, "length", len(merged))
			return merged, ids, nil
		}
	}
	return nil, nil, fmt.Errorf("no bridge for hole of %d vertices in polygon of %d vertices: %w", h, m, ErrTriangulationFailed)
}

// validBridge returns true if the segment between outer[k] and hole[rot] enters the filled region at both ends, and neither crosses nor touches other edges.
func validBridge(outer Polygon, k int, hole Polygon, rot int, obstacles []Polygon, winding Winding, margin float64) bool {
	m, h := len(outer), len(hole)
	a, b := outer[k], hole[rot]
	if a.Equals(b) {
		return false
	} else if !inWedge(outer[(k+m-1)%m], a, outer[(k+1)%m], b, winding, margin) {
		return false
	} else if !inWedge(hole[(rot+h-1)%h], b, hole[(rot+1)%h], a, winding, margin) {
		return false
	}

	blocked := func(poly Polygon) bool {
		for i := range poly {
			c, d := poly[i], poly[(i+1)%len(poly)]
			if c.Equals(a) || c.Equals(b) || d.Equals(a) || d.Equals(b) {
				if segmentsCross(a, b, c, d) {
					return true
				}
			} else if segmentsIntersect(a, b, c, d) {
				return true
			}
		}
		return false
	}
	if blocked(outer) || blocked(hole) {
		return false
	}
	for _, obstacle := range obstacles {
		if blocked(obstacle) {
			return false
		}
	}
	return true
}
