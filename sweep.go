package glyphmesh

import (
	"fmt"

	"github.com/ByteArena/poly2tri-go"
)

// SweepTriangulate triangulates a polygon with holes by a constrained Delaunay sweep-line. Unlike ear clipping it does not need bridges, but it fails for contours that share points. Vertices are those of the skin followed by those of the holes, and the triangles have the winding of the skin.
func SweepTriangulate(skin Polygon, holes []Polygon) (mesh Mesh, err error) {
	n := len(skin)
	for _, hole := range holes {
		n += len(hole)
	}
	if len(skin) < 3 || maxVertices < n {
		return Mesh{}, fmt.Errorf("sweep: polygon of %d vertices: %w", n, ErrTriangulationFailed)
	}

	defer func() {
		if r := recover(); r != nil {
			mesh, err = Mesh{}, fmt.Errorf("sweep: %v: %w", r, ErrTriangulationFailed)
		}
	}()

	vertices := make([]Point, 0, n)
	index := make(map[*poly2tri.Point]int, n)
	contour := func(poly Polygon) []*poly2tri.Point {
		pts := make([]*poly2tri.Point, len(poly))
		for i, p := range poly {
			pts[i] = poly2tri.NewPoint(p.X, p.Y)
			index[pts[i]] = len(vertices)
			vertices = append(vertices, p)
		}
		return pts
	}

	swctx := poly2tri.NewSweepContext(contour(skin), false)
	for _, hole := range holes {
		if len(hole) < 3 {
			return Mesh{}, fmt.Errorf("sweep: hole of %d vertices: %w", len(hole), ErrTriangulationFailed)
		}
		swctx.AddHole(contour(hole))
	}
	swctx.Triangulate()

	sign := 1
	if skin.Winding() == Clockwise {
		sign = -1
	}
	trs := swctx.GetTriangles()
	triangles := make([]Triangle, 0, len(trs))
	for _, tr := range trs {
		var tri Triangle
		for j := 0; j < 3; j++ {
			i, ok := index[tr.Points[j]]
			if !ok {
				return Mesh{}, fmt.Errorf("sweep: unknown point %v,%v: %w", tr.Points[j].X, tr.Points[j].Y, ErrTriangulationFailed)
			}
			tri[j] = uint16(i)
		}
		if orientSign(vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]) != sign {
			tri[1], tri[2] = tri[2], tri[1]
		}
		triangles = append(triangles, tri)
	}
	return Mesh{vertices, triangles}, nil
}
