package glyphmesh

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func TestSweepTriangulate(t *testing.T) {
	mesh, err := SweepTriangulate(unitSquare, nil)
	test.Error(t, err)
	test.T(t, len(mesh.Triangles), 2)
	test.Float(t, mesh.Area(), 1.0)
	for _, tri := range mesh.Triangles {
		test.T(t, Polygon{mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]}.Winding(), CounterClockwise)
	}

	outer := Polygon{{0.0, 0.0}, {0.0, 10.0}, {10.0, 10.0}, {10.0, 0.0}}
	hole := Polygon{{3.0, 3.0}, {7.0, 3.0}, {7.0, 7.0}, {3.0, 7.0}}
	mesh, err = SweepTriangulate(outer, []Polygon{hole})
	test.Error(t, err)
	test.T(t, len(mesh.Vertices), 8)
	test.T(t, len(mesh.Triangles), 8)
	test.Float(t, mesh.Area(), 84.0)
	for _, tri := range mesh.Triangles {
		test.T(t, Polygon{mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]}.Winding(), Clockwise)
	}
}

func TestSweepTriangulateErrors(t *testing.T) {
	_, err := SweepTriangulate(Polygon{{0.0, 0.0}, {1.0, 1.0}}, nil)
	test.That(t, errors.Is(err, ErrTriangulationFailed))

	_, err = SweepTriangulate(unitSquare, []Polygon{{{0.5, 0.5}}})
	test.That(t, errors.Is(err, ErrTriangulationFailed))
}
