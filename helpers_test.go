package glyphmesh

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tdewolff/glyphmesh/font"
	"github.com/tdewolff/test"
)

// RandomPolygon returns a star-shaped polygon around the origin with n vertices in counter clockwise order.
func RandomPolygon(rng *rand.Rand, n int) Polygon {
	p := make(Polygon, n)
	for i := range p {
		theta := 2.0 * math.Pi * (float64(i) + 0.1 + 0.8*rng.Float64()) / float64(n)
		r := 0.5 + 1.5*rng.Float64()
		p[i] = Point{r * math.Cos(theta), r * math.Sin(theta)}
	}
	return p
}

// glyphOutline builds a font with a single glyph from on-curve contours and parses it back.
func glyphOutline(t *testing.T, contours ...[][2]int32) font.GlyphOutline {
	t.Helper()
	vss := make([][]font.Vertex, len(contours))
	for i, contour := range contours {
		for _, p := range contour {
			vss[i] = append(vss[i], font.Vertex{X: p[0], Y: p[1], OnCurve: true})
		}
	}

	b := font.NewBuilder(1000)
	if len(vss) == 0 {
		b.Map('x', b.AddEmptyGlyph(500))
	} else {
		b.Map('x', b.AddSimpleGlyph(500, vss...))
	}
	f, err := font.ParseFont(b.Bytes())
	test.Error(t, err)
	return f.OutlineFor('x')
}

func meshesArea(meshes []Mesh) float64 {
	a := 0.0
	for _, mesh := range meshes {
		a += mesh.Area()
	}
	return a
}
