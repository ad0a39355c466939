package glyphmesh

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func TestAddHole(t *testing.T) {
	outer := Polygon{{0.0, 0.0}, {10.0, 0.0}, {10.0, 10.0}, {0.0, 10.0}}
	hole := Polygon{{3.0, 3.0}, {3.0, 7.0}, {7.0, 7.0}, {7.0, 3.0}}

	merged, err := AddHole(outer, hole, DefaultMargin)
	test.Error(t, err)
	test.T(t, len(merged), len(outer)+len(hole)+2)
	test.T(t, merged, Polygon{{0.0, 0.0}, {3.0, 3.0}, {3.0, 7.0}, {7.0, 7.0}, {7.0, 3.0}, {3.0, 3.0}, {0.0, 0.0}, {10.0, 0.0}, {10.0, 10.0}, {0.0, 10.0}})

	triangles, err := Triangulate(merged, outer.Winding(), DefaultMargin)
	test.Error(t, err)
	test.T(t, len(triangles), len(merged)-2)
	test.Float(t, trianglesArea(merged, triangles), 84.0)
}

func TestAddHoleClockwise(t *testing.T) {
	outer := Polygon{{0.0, 0.0}, {0.0, 10.0}, {10.0, 10.0}, {10.0, 0.0}}
	hole := Polygon{{6.0, 6.0}, {8.0, 6.0}, {8.0, 8.0}, {6.0, 8.0}}

	merged, err := AddHole(outer, hole, DefaultMargin)
	test.Error(t, err)
	test.T(t, len(merged), 10)
	test.T(t, merged[1], Point{0.0, 10.0})
	test.T(t, merged[2], Point{6.0, 6.0})

	triangles, err := Triangulate(merged, Clockwise, DefaultMargin)
	test.Error(t, err)
	test.T(t, len(triangles), 8)
	test.Float(t, trianglesArea(merged, triangles), 96.0)
}

func TestAddHoleObstacle(t *testing.T) {
	outer := Polygon{{0.0, 0.0}, {10.0, 0.0}, {10.0, 10.0}, {0.0, 10.0}}
	hole := Polygon{{6.0, 6.0}, {6.0, 8.0}, {8.0, 8.0}, {8.0, 6.0}}
	obstacle := Polygon{{7.0, 2.0}, {7.0, 4.0}, {9.0, 4.0}, {9.0, 2.0}}

	merged, ids, err := addHole(outer, sequence(0, 4), hole, sequence(4, 4), nil, DefaultMargin)
	test.Error(t, err)
	test.T(t, merged[1], Point{10.0, 0.0})
	test.T(t, merged[2], Point{6.0, 6.0})
	test.T(t, ids, []int{0, 1, 4, 5, 6, 7, 4, 1, 2, 3})

	// the bridge from (10,0) would cross the obstacle
	merged, ids, err = addHole(outer, sequence(0, 4), hole, sequence(4, 4), []Polygon{obstacle}, DefaultMargin)
	test.Error(t, err)
	test.T(t, merged[3], Point{0.0, 10.0})
	test.T(t, merged[4], Point{6.0, 6.0})
	test.T(t, ids, []int{0, 1, 2, 3, 4, 5, 6, 7, 4, 3})
	for i, id := range ids {
		if id < 4 {
			test.T(t, merged[i], outer[id])
		} else {
			test.T(t, merged[i], hole[id-4])
		}
	}
}

func TestAddHoleErrors(t *testing.T) {
	outer := Polygon{{0.0, 0.0}, {10.0, 0.0}, {10.0, 10.0}, {0.0, 10.0}}
	_, err := AddHole(outer, Polygon{{3.0, 3.0}, {7.0, 7.0}}, DefaultMargin)
	test.That(t, errors.Is(err, ErrTriangulationFailed))

	// no bridge enters the material at both ends
	_, err = AddHole(outer, outer.Reverse(), DefaultMargin)
	test.That(t, errors.Is(err, ErrTriangulationFailed))
}
