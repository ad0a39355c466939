package glyphmesh

import (
	"errors"
	"testing"

	"github.com/tdewolff/glyphmesh/font"
	"github.com/tdewolff/test"
	"golang.org/x/image/font/gofont/goregular"
)

// a 12-gon skin and a 10-gon hole, as in the letter o
var (
	oSkin = [][2]int32{{1100, 600}, {1033, 350}, {850, 167}, {600, 100}, {350, 167}, {167, 350}, {100, 600}, {167, 850}, {350, 1033}, {600, 1100}, {850, 1033}, {1033, 850}}
	oHole = [][2]int32{{850, 600}, {802, 747}, {677, 838}, {523, 838}, {398, 747}, {350, 600}, {398, 453}, {523, 362}, {677, 362}, {802, 453}}
)

func square(x0, y0, x1, y1 int32) [][2]int32 {
	return [][2]int32{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}} // clockwise
}

func reversed(contour [][2]int32) [][2]int32 {
	r := make([][2]int32, len(contour))
	for i, p := range contour {
		r[len(contour)-1-i] = p
	}
	return r
}

func TestAssembleO(t *testing.T) {
	outline := glyphOutline(t, oSkin, oHole)
	contours := Contours(outline, 0)
	test.T(t, len(contours), 2)
	test.T(t, contours[0].Winding(), Clockwise)
	test.T(t, contours[1].Winding(), CounterClockwise)

	meshes, err := AssembleGlyphMeshes(outline)
	test.Error(t, err)
	test.T(t, len(meshes), 1)

	mesh := meshes[0]
	test.T(t, len(mesh.Vertices), 22)
	test.T(t, len(mesh.Triangles), 22)
	test.T(t, mesh.Vertices[0], Point{1100.0, 600.0})
	test.T(t, mesh.Vertices[12], Point{850.0, 600.0})
	test.Float(t, mesh.Area(), contours[0].Area()-contours[1].Area())
	test.Float(t, mesh.Area(), 566312.0)
	for _, tri := range mesh.Triangles {
		test.That(t, tri[0] != tri[1] && tri[1] != tri[2] && tri[2] != tri[0], "degenerate triangle", tri)
		test.T(t, Polygon{mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]}.Winding(), Clockwise)
	}
}

func TestAssemblePieces(t *testing.T) {
	var tts = []struct {
		name      string
		contours  [][][2]int32
		vertices  []int
		triangles []int
		area      float64
	}{
		{"i", [][][2]int32{square(100, 1000, 300, 1200), square(100, 0, 300, 800)}, []int{4, 4}, []int{2, 2}, 200000.0},
		{"hole of first skin", [][][2]int32{square(0, 0, 1000, 1000), square(1200, 0, 2200, 1000), reversed(square(250, 250, 750, 750))}, []int{8, 4}, []int{8, 2}, 1750000.0},
		{"hole before skin", [][][2]int32{reversed(square(250, 250, 750, 750)), square(0, 0, 1000, 1000)}, []int{8}, []int{8}, 750000.0},
		{"two holes", [][][2]int32{square(0, 0, 1000, 1000), reversed(square(100, 100, 400, 400)), reversed(square(600, 600, 900, 900))}, []int{12}, []int{14}, 820000.0},
		{"degenerate", [][][2]int32{{{0, 0}, {10, 0}, {20, 0}}, square(0, 0, 100, 100), {{5, 5}, {5, 5}}}, []int{4}, []int{2}, 10000.0},
		{"counter clockwise skin", [][][2]int32{reversed(square(0, 0, 1000, 1000)), square(250, 250, 750, 750)}, []int{8}, []int{8}, 750000.0},
	}
	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			meshes, err := AssembleGlyphMeshes(glyphOutline(t, tt.contours...))
			test.Error(t, err)
			test.T(t, len(meshes), len(tt.vertices))
			for i, mesh := range meshes {
				test.T(t, len(mesh.Vertices), tt.vertices[i], "vertices of piece", i)
				test.T(t, len(mesh.Triangles), tt.triangles[i], "triangles of piece", i)
			}
			test.Float(t, meshesArea(meshes), tt.area)
		})
	}
}

func TestAssembleEmpty(t *testing.T) {
	outline := glyphOutline(t)
	test.That(t, outline.IsEmpty())

	meshes, err := AssembleGlyphMeshes(outline)
	test.Error(t, err)
	test.T(t, len(meshes), 0)

	meshes, err = AssembleGlyphMeshes(font.GlyphOutline{})
	test.Error(t, err)
	test.T(t, len(meshes), 0)
}

func TestAssembleSkipFailed(t *testing.T) {
	// the second piece is a square with itself as a hole
	bad := square(200, 0, 300, 100)
	outline := glyphOutline(t, square(0, 0, 100, 100), bad, reversed(bad))

	_, err := AssembleGlyphMeshes(outline)
	test.That(t, errors.Is(err, ErrTriangulationFailed))

	meshes, err := Options{Margin: DefaultMargin, SkipFailed: true}.Assemble(outline)
	test.Error(t, err)
	test.T(t, len(meshes), 2)
	test.T(t, len(meshes[0].Triangles), 2)
	test.That(t, meshes[1].IsEmpty())
}

func TestAssembleSweep(t *testing.T) {
	outline := glyphOutline(t, oSkin, oHole)
	meshes, err := Options{Engine: Sweep}.Assemble(outline)
	test.Error(t, err)
	test.T(t, len(meshes), 1)
	test.T(t, len(meshes[0].Vertices), 22)
	test.T(t, len(meshes[0].Triangles), 22)
	test.FloatDiff(t, meshes[0].Area(), 566312.0, 1e-9)
	test.T(t, Sweep.String(), "Sweep")
}

func TestAssembleCurves(t *testing.T) {
	b := font.NewBuilder(1000)
	b.Map('o', b.AddSimpleGlyph(500, []font.Vertex{{X: 0, Y: 0, OnCurve: false}, {X: 10, Y: 0, OnCurve: false}, {X: 10, Y: 10, OnCurve: false}, {X: 0, Y: 10, OnCurve: false}}))
	f, err := font.ParseFont(b.Bytes())
	test.Error(t, err)

	meshes, err := Options{Margin: DefaultMargin, CurveSteps: 1}.Assemble(f.OutlineFor('o'))
	test.Error(t, err)
	test.T(t, len(meshes), 1)
	test.T(t, meshes[0].Vertices, []Point{{0.0, 5.0}, {5.0, 0.0}, {10.0, 5.0}, {5.0, 10.0}})
	test.Float(t, meshes[0].Area(), 50.0)
}

func TestFlattenContour(t *testing.T) {
	var tts = []struct {
		name  string
		vs    []font.Vertex
		steps int
		poly  Polygon
	}{
		{"lines", []font.Vertex{{X: 0, Y: 0, OnCurve: true}, {X: 10, Y: 0, OnCurve: true}, {X: 10, Y: 10, OnCurve: true}}, 4, Polygon{{0.0, 0.0}, {10.0, 0.0}, {10.0, 10.0}}},
		{"off curve", []font.Vertex{{X: 0, Y: 0, OnCurve: true}, {X: 10, Y: 0, OnCurve: false}, {X: 10, Y: 10, OnCurve: true}}, 2, Polygon{{0.0, 0.0}, {7.5, 2.5}, {10.0, 10.0}}},
		{"closing curve", []font.Vertex{{X: 0, Y: 0, OnCurve: true}, {X: 10, Y: 0, OnCurve: true}, {X: 10, Y: 10, OnCurve: false}}, 2, Polygon{{0.0, 0.0}, {10.0, 0.0}, {7.5, 5.0}}},
		{"start off curve", []font.Vertex{{X: 10, Y: 0, OnCurve: false}, {X: 10, Y: 10, OnCurve: true}, {X: 0, Y: 0, OnCurve: true}}, 2, Polygon{{10.0, 10.0}, {0.0, 0.0}, {7.5, 2.5}}},
		{"implied points", []font.Vertex{{X: 0, Y: 0, OnCurve: false}, {X: 10, Y: 0, OnCurve: false}, {X: 10, Y: 10, OnCurve: false}, {X: 0, Y: 10, OnCurve: false}}, 1, Polygon{{0.0, 5.0}, {5.0, 0.0}, {10.0, 5.0}, {5.0, 10.0}}},
	}
	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			test.T(t, flattenContour(tt.vs, tt.steps).Clean(), tt.poly)
		})
	}
}

// skinArea returns the area of the skins minus the area of the holes, where skins have the winding of the largest contour.
func skinArea(contours []Polygon) float64 {
	var kept []Polygon
	for _, contour := range contours {
		if 3 <= len(contour) && Epsilon <= contour.Area() {
			kept = append(kept, contour)
		}
	}
	largest := kept[0]
	for _, contour := range kept {
		if largest.Area() < contour.Area() {
			largest = contour
		}
	}

	a := 0.0
	for _, contour := range kept {
		if contour.Winding() == largest.Winding() {
			a += contour.Area()
		} else {
			a -= contour.Area()
		}
	}
	return a
}

func TestGoRegularMeshes(t *testing.T) {
	f, err := font.ParseFont(goregular.TTF)
	test.Error(t, err)

	// raw control points
	for _, r := range "oOBDPQRabdeg08&%@#" {
		outline := f.OutlineFor(r)
		meshes, err := AssembleGlyphMeshes(outline)
		test.Error(t, err, string(r))
		test.FloatDiff(t, meshesArea(meshes), skinArea(Contours(outline, 0)), 1e-9, "area of", string(r))
	}

	// flattened curves
	options := Options{Margin: DefaultMargin, CurveSteps: 4}
	for r := rune('!'); r <= '~'; r++ {
		outline := f.OutlineFor(r)
		meshes, err := options.Assemble(outline)
		test.Error(t, err, string(r))
		test.FloatDiff(t, meshesArea(meshes), skinArea(Contours(outline, options.CurveSteps)), 1e-9, "area of", string(r))
		for _, mesh := range meshes {
			for _, tri := range mesh.Triangles {
				test.That(t, int(tri[2]) < len(mesh.Vertices))
			}
		}
	}

	var tts = []struct {
		r         rune
		pieces    int
		vertices  int
		triangles int
	}{
		{'o', 1, 20, 20},
		{'i', 2, 4, 2},
		{'%', 3, 4, 2},
		{'j', 2, 13, 11},
		{'B', 1, 32, 34},
	}
	for _, tt := range tts {
		t.Run(string(tt.r), func(t *testing.T) {
			meshes, err := AssembleGlyphMeshes(f.OutlineFor(tt.r))
			test.Error(t, err)
			test.T(t, len(meshes), tt.pieces)
			test.T(t, len(meshes[0].Vertices), tt.vertices)
			test.T(t, len(meshes[0].Triangles), tt.triangles)
		})
	}
	test.T(t, len(f.OutlineFor(' ').Vertices), 0)
}

func TestGoRegularAllGlyphs(t *testing.T) {
	f, err := font.ParseFont(goregular.TTF)
	test.Error(t, err)

	for _, steps := range []int{0, 4} {
		options := Options{Margin: DefaultMargin, CurveSteps: steps}
		failed := 0
		for glyphID := uint16(0); glyphID < f.NumGlyphs(); glyphID++ {
			outline, err := f.Outline(glyphID)
			test.Error(t, err)
			meshes, err := options.Assemble(outline)
			if err != nil {
				// self-intersecting control points, or holes lying on the skin
				test.That(t, errors.Is(err, ErrTriangulationFailed), err)
				failed++
				continue
			} else if len(meshes) == 0 {
				continue
			}
			test.FloatDiff(t, meshesArea(meshes), skinArea(Contours(outline, steps)), 1e-9, "area of glyph", glyphID, "with steps", steps)
		}
		test.That(t, failed <= 6, failed, "failed glyphs with steps", steps)
	}

	// touches itself at (351,554)
	outline, err := f.Outline(410)
	test.Error(t, err)
	meshes, err := Options{Margin: DefaultMargin, CurveSteps: 4}.Assemble(outline)
	test.Error(t, err)
	test.FloatDiff(t, meshesArea(meshes), 456790.375, 1e-9)
}
