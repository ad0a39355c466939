package glyphmesh

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/f32"
)

// Mesh is a triangulated piece of a glyph. Triangles index into Vertices.
type Mesh struct {
	Vertices  []Point
	Triangles []Triangle
}

// IsEmpty returns true if the mesh has no triangles.
func (m Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Area returns the total absolute area of the triangles.
func (m Mesh) Area() float64 {
	a := 0.0
	for _, tri := range m.Triangles {
		a += Polygon{m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]}.Area()
	}
	return a
}

// Bounds returns the minimum and maximum coordinates of the vertices.
func (m Mesh) Bounds() (Point, Point) {
	if len(m.Vertices) == 0 {
		return Point{}, Point{}
	}
	lo, hi := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo.X, lo.Y = min(lo.X, v.X), min(lo.Y, v.Y)
		hi.X, hi.Y = max(hi.X, v.X), max(hi.Y, v.Y)
	}
	return lo, hi
}

// Transform returns a copy of the mesh with every vertex scaled by s and then translated by d. A negative scale for Y flips the mesh for y-down coordinate systems, which reverses the winding of its triangles.
func (m Mesh) Transform(sx, sy float64, d Point) Mesh {
	vertices := make([]Point, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = Point{v.X*sx + d.X, v.Y*sy + d.Y}
	}
	triangles := make([]Triangle, len(m.Triangles))
	copy(triangles, m.Triangles)
	return Mesh{vertices, triangles}
}

// IndexBuffer returns the triangles' vertex indices as a flat list, three per triangle.
func (m Mesh) IndexBuffer() []uint16 {
	indices := make([]uint16, 0, 3*len(m.Triangles))
	for _, tri := range m.Triangles {
		indices = append(indices, tri[0], tri[1], tri[2])
	}
	return indices
}

// VertexBuffer returns the vertices in single precision.
func (m Mesh) VertexBuffer() []f32.Vec2 {
	vertices := make([]f32.Vec2, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = f32.Vec2{float32(v.X), float32(v.Y)}
	}
	return vertices
}

func (m Mesh) String() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "Mesh: %d vertices, %d triangles\n", len(m.Vertices), len(m.Triangles))
	for _, tri := range m.Triangles {
		fmt.Fprintf(&sb, "  %v %v %v\n", m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]])
	}
	return sb.String()
}
