package glyphmesh

import (
	"fmt"
	"math"
)

// DefaultMargin is the default angular margin in radians. Ears with an interior angle within the margin of zero or PI are rejected.
const DefaultMargin = 1e-6

// maxVertices is the largest polygon whose vertices can be addressed by a Triangle.
const maxVertices = math.MaxUint16

// Triangle holds three vertex indices.
type Triangle [3]uint16

// Triangulate triangulates a simple polygon by ear clipping and returns n-2 triangles for n vertices. The triangles index into the polygon and are ordered with the polygon's winding. Polygons with holes must first be merged using AddHole. A polygon may touch itself at a vertex, the spikes and edges of zero length this leaves behind are clipped as triangles of zero area.
func Triangulate(polygon Polygon, winding Winding, margin float64) ([]Triangle, error) {
	if len(polygon) < 3 || maxVertices < len(polygon) {
		return nil, fmt.Errorf("polygon of %d vertices: %w", len(polygon), ErrTriangulationFailed)
	}
	tris, err := earClip(polygon, winding, margin)
	if err != nil {
		return nil, err
	}
	triangles := make([]Triangle, len(tris))
	for i, tri := range tris {
		triangles[i] = Triangle{uint16(tri[0]), uint16(tri[1]), uint16(tri[2])}
	}
	return triangles, nil
}

func earClip(pts []Point, winding Winding, margin float64) ([][3]int, error) {
	ring := make([]int, len(pts))
	for i := range ring {
		ring[i] = i
	}

	sign := 1
	if winding == Clockwise {
		sign = -1
	}

	tris := make([][3]int, 0, len(pts)-2)
	for 3 < len(ring) {
		m := len(ring)
		clipped := false
		for s := 0; s < m; s++ {
			k := (1 + s) % m
			if !isEar(pts, ring, k, winding, margin) {
				continue
			}
			tris = append(tris, [3]int{ring[(k+m-1)%m], ring[k], ring[(k+1)%m]})
			ring = append(ring[:k], ring[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, fmt.Errorf("no ear among %d of %d vertices: %w", m, len(pts), ErrTriangulationFailed)
		}
	}
	if o := orientSign(pts[ring[0]], pts[ring[1]], pts[ring[2]]); o != 0 && o != sign {
		return nil, fmt.Errorf("last triangle against winding of %d vertices: %w", len(pts), ErrTriangulationFailed)
	}
	tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
	return tris, nil
}

// isEar returns true if the vertex at ring position k is convex, its triangle contains no other vertex, and its diagonal crosses no edge. Vertices that coincide with a corner of the triangle, such as the two ends of a bridge or a point where the polygon touches itself, are allowed only if neither of their edges enters the triangle.
func isEar(pts []Point, ring []int, k int, winding Winding, margin float64) bool {
	m := len(ring)
	iPrev, iNext := (k+m-1)%m, (k+1)%m
	prev, curr, next := pts[ring[iPrev]], pts[ring[k]], pts[ring[iNext]]
	if prev.Equals(curr) || curr.Equals(next) || prev.Equals(next) {
		return true // zero area
	}

	theta := interiorAngle(prev, curr, next, winding)
	if theta <= margin || math.Pi-margin <= theta {
		return false
	}

	// each corner followed by the other two in the triangle's order
	corners := [3][3]Point{{prev, curr, next}, {curr, next, prev}, {next, prev, curr}}
	sign := orientSign(prev, curr, next)
	incident := func(j int) bool {
		return j == iPrev || j == k || j == iNext
	}
	for j := 0; j < m; j++ {
		if incident(j) {
			continue
		}
		p := pts[ring[j]]
		corner := -1
		for i, c := range corners {
			if p.Equals(c[0]) {
				corner = i
				break
			}
		}
		if corner == -1 {
			if inTriangle(p, prev, curr, next) {
				return false
			}
			continue
		}

		v, u, w := corners[corner][0], corners[corner][1], corners[corner][2]
		if inAngle(v, u, w, pts[ring[(j+m-1)%m]], sign) || inAngle(v, u, w, pts[ring[(j+1)%m]], sign) {
			return false
		}
	}
	for j := 0; j < m; j++ {
		j1 := (j + 1) % m
		if incident(j) || incident(j1) {
			continue
		} else if segmentsCross(prev, next, pts[ring[j]], pts[ring[j1]]) {
			return false
		}
	}
	return true
}
