package glyphmesh

import (
	"fmt"

	"github.com/tdewolff/glyphmesh/font"
)

// Engine is the triangulation algorithm used for each piece of a glyph.
type Engine int

// see Engine
const (
	EarClipping Engine = iota
	Sweep
)

func (e Engine) String() string {
	switch e {
	case EarClipping:
		return "EarClipping"
	case Sweep:
		return "Sweep"
	}
	return fmt.Sprintf("Engine(%d)", int(e))
}

// Options configures how glyph outlines are turned into meshes.
type Options struct {
	// Margin is the angular margin in radians for ears and bridges.
	Margin float64

	// Engine selects ear clipping with hole bridges, or a constrained Delaunay sweep-line.
	Engine Engine

	// SkipFailed replaces pieces that fail to triangulate by an empty mesh instead of returning an error.
	SkipFailed bool

	// CurveSteps flattens each quadratic curve into the given number of line segments. When zero, the raw on- and off-curve points are used as polygon vertices.
	CurveSteps int
}

// DefaultOptions uses ear clipping on the raw outline points.
var DefaultOptions = Options{
	Margin: DefaultMargin,
}

// AssembleGlyphMeshes turns a glyph outline into one mesh per filled piece using DefaultOptions.
func AssembleGlyphMeshes(outline font.GlyphOutline) ([]Mesh, error) {
	return DefaultOptions.Assemble(outline)
}

type piece struct {
	skin  Polygon
	holes []Polygon
}

// Assemble turns a glyph outline into one mesh per filled piece. Contours with the winding of the largest contour are skins, each starting a new piece, and contours of opposite winding are holes of the skin that contains them. Empty glyphs return no meshes.
func (o Options) Assemble(outline font.GlyphOutline) ([]Mesh, error) {
	if outline.IsEmpty() {
		return nil, nil
	}

	contours := make([]Polygon, 0, outline.NumContours())
	for i, contour := range Contours(outline, o.CurveSteps) {
		if len(contour) < 3 || contour.Area() < Epsilon {
			Logger().Warn("degenerate contour", "glyph", outline.GlyphID, "contour", i, "points", len(contour))
			continue
		}
		contours = append(contours, contour)
	}
	if len(contours) == 0 {
		return nil, nil
	}

	largest := contours[0]
	for _, contour := range contours[1:] {
		if largest.Area() < contour.Area() {
			largest = contour
		}
	}
	skinWinding := largest.Winding()

	var pieces []piece
	var orphans []Polygon
	for _, contour := range contours {
		if contour.Winding() == skinWinding {
			pieces = append(pieces, piece{skin: contour})
		} else if 0 < len(pieces) {
			pieces[len(pieces)-1].holes = append(pieces[len(pieces)-1].holes, contour)
		} else {
			orphans = append(orphans, contour)
		}
	}
	reassignHoles(pieces, orphans)
	Logger().Debug("glyph pieces", "glyph", outline.GlyphID, "pieces", len(pieces), "winding", skinWinding)

	meshes := make([]Mesh, 0, len(pieces))
	for i, p := range pieces {
		var mesh Mesh
		var err error
		if o.Engine == Sweep {
			mesh, err = SweepTriangulate(p.skin, p.holes)
		} else {
			mesh, err = o.clipPiece(p)
		}
		if err != nil {
			if !o.SkipFailed {
				return nil, fmt.Errorf("glyphID %v: piece %d: %w", outline.GlyphID, i, err)
			}
			Logger().Warn("skipped piece", "glyph", outline.GlyphID, "piece", i, "err", err)
			mesh = Mesh{}
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// smallestSkin returns the piece with the smallest skin that contains the hole, or -1.
func smallestSkin(pieces []piece, hole Polygon, exclude int) int {
	best, bestArea := -1, 0.0
	for k, p := range pieces {
		if k != exclude && p.skin.ContainsPolygon(hole) && (best == -1 || p.skin.Area() < bestArea) {
			best, bestArea = k, p.skin.Area()
		}
	}
	return best
}

// reassignHoles moves holes that lie outside their skin to the smallest skin that contains them. Orphans are holes that precede all skins, they are added to the smallest skin containing them or else to the first.
func reassignHoles(pieces []piece, orphans []Polygon) {
	for i := range pieces {
		for j := 0; j < len(pieces[i].holes); {
			hole := pieces[i].holes[j]
			if pieces[i].skin.ContainsPolygon(hole) {
				j++
				continue
			}

			best := smallestSkin(pieces, hole, i)
			if best == -1 {
				j++
				continue
			}
			Logger().Debug("reassigned hole", "from", i, "to", best)
			pieces[best].holes = append(pieces[best].holes, hole)
			pieces[i].holes = append(pieces[i].holes[:j], pieces[i].holes[j+1:]...)
		}
	}
	for _, hole := range orphans {
		best := smallestSkin(pieces, hole, -1)
		if best == -1 {
			best = 0
		}
		pieces[best].holes = append(pieces[best].holes, hole)
	}
}

// clipPiece merges the holes into the skin one at a time and ear clips the result. The mesh holds every distinct contour point once, triangles that collapse onto a bridge are dropped.
func (o Options) clipPiece(p piece) (Mesh, error) {
	vertices := append(Polygon{}, p.skin...)
	for _, hole := range p.holes {
		vertices = append(vertices, hole...)
	}
	if maxVertices < len(vertices) {
		return Mesh{}, fmt.Errorf("polygon of %d vertices: %w", len(vertices), ErrTriangulationFailed)
	}

	merged, ids := p.skin, sequence(0, len(p.skin))
	offset := len(p.skin)
	for i, hole := range p.holes {
		var err error
		merged, ids, err = addHole(merged, ids, hole, sequence(offset, len(hole)), p.holes[i+1:], o.Margin)
		if err != nil {
			return Mesh{}, fmt.Errorf("hole %d: %w", i, err)
		}
		offset += len(hole)
	}

	tris, err := earClip(merged, p.skin.Winding(), o.Margin)
	if err != nil {
		return Mesh{}, err
	}
	triangles := make([]Triangle, 0, len(tris))
	for _, tri := range tris {
		a, b, c := ids[tri[0]], ids[tri[1]], ids[tri[2]]
		if a == b || b == c || c == a {
			Logger().Debug("dropped bridge triangle", "ids", []int{a, b, c})
			continue
		}
		triangles = append(triangles, Triangle{uint16(a), uint16(b), uint16(c)})
	}
	return Mesh{vertices, triangles}, nil
}

func sequence(start, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = start + i
	}
	return s
}

// Contours returns the glyph's contours as polygons, with consecutive duplicate points removed. With steps zero the on- and off-curve points are used as is, otherwise each quadratic curve is flattened into the given number of line segments.
func Contours(outline font.GlyphOutline, steps int) []Polygon {
	polys := make([]Polygon, 0, outline.NumContours())
	for i := 0; i < outline.NumContours(); i++ {
		vs := outline.Contour(i)
		var poly Polygon
		if steps <= 0 {
			poly = make(Polygon, len(vs))
			for j, v := range vs {
				poly[j] = Point{float64(v.X), float64(v.Y)}
			}
		} else {
			poly = flattenContour(vs, steps)
		}
		polys = append(polys, poly.Clean())
	}
	return polys
}

// flattenContour follows a TrueType contour, where two consecutive off-curve points imply an on-curve point halfway between them.
func flattenContour(vs []font.Vertex, steps int) Polygon {
	n := len(vs)
	if n == 0 {
		return nil
	}
	pt := func(i int) Point {
		return Point{float64(vs[i%n].X), float64(vs[i%n].Y)}
	}

	start := -1
	for i, v := range vs {
		if v.OnCurve {
			start = i
			break
		}
	}

	var first Point
	var order []int
	if start == -1 {
		first = pt(n - 1).Interpolate(pt(0), 0.5)
		order = sequence(0, n)
	} else {
		first = pt(start)
		order = sequence(start+1, n-1)
	}

	poly := Polygon{first}
	cur := first
	for j := 0; j < len(order); j++ {
		i := order[j]
		if vs[i%n].OnCurve {
			cur = pt(i)
			poly = append(poly, cur)
			continue
		}

		ctrl, end := pt(i), first
		if j+1 < len(order) {
			if next := order[j+1]; vs[next%n].OnCurve {
				end = pt(next)
				j++
			} else {
				end = ctrl.Interpolate(pt(next), 0.5)
			}
		}
		for k := 1; k <= steps; k++ {
			t := float64(k) / float64(steps)
			poly = append(poly, cur.Interpolate(ctrl, t).Interpolate(ctrl.Interpolate(end, t), t))
		}
		cur = end
	}
	return poly
}
