package font

import (
	"fmt"
	"strings"
)

// simple glyph flags
const (
	flagOnCurve  = 0x01
	flagXShort   = 0x02
	flagYShort   = 0x04
	flagRepeat   = 0x08
	flagXSamePos = 0x10
	flagYSamePos = 0x20
)

// compound glyph flags
const (
	argsAreWords          = 0x0001
	argsAreXYValues       = 0x0002
	weHaveAScale          = 0x0008
	moreComponents        = 0x0020
	weHaveAnXAndYScale    = 0x0040
	weHaveATwoByTwo       = 0x0080
	weHaveInstructions    = 0x0100
	scaledComponentOffset = 0x0800
)

// MaxCompoundDepth is the maximum nesting of compound glyphs, deeper nesting is treated as a reference cycle.
const MaxCompoundDepth = 8

// BoundingBox is the glyph's bounding box as stored in its header.
type BoundingBox struct {
	XMin, YMin, XMax, YMax int16
}

// Vertex is a point of a glyph outline in font units.
type Vertex struct {
	X, Y    int32
	OnCurve bool
}

// GlyphOutline is the decoded outline of a glyph. ContourEnds holds the index of the last vertex of each contour. Compound glyphs are flattened into the same form.
type GlyphOutline struct {
	GlyphID     uint16
	Bounds      BoundingBox
	ContourEnds []uint16
	Vertices    []Vertex
}

// IsEmpty returns true if the glyph has no contours, such as for the space character.
func (outline GlyphOutline) IsEmpty() bool {
	return len(outline.ContourEnds) == 0
}

// NumContours returns the number of contours.
func (outline GlyphOutline) NumContours() int {
	return len(outline.ContourEnds)
}

// Contour returns the vertices of the i-th contour.
func (outline GlyphOutline) Contour(i int) []Vertex {
	start := 0
	if 0 < i {
		start = int(outline.ContourEnds[i-1]) + 1
	}
	return outline.Vertices[start : int(outline.ContourEnds[i])+1]
}

func (outline GlyphOutline) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Glyph %v:\n", outline.GlyphID)
	fmt.Fprintf(&b, "  Contours: %v\n", len(outline.ContourEnds))
	fmt.Fprintf(&b, "  Bounds: (%v,%v)-(%v,%v)\n", outline.Bounds.XMin, outline.Bounds.YMin, outline.Bounds.XMax, outline.Bounds.YMax)
	fmt.Fprintf(&b, "  EndPoints: %v\n", outline.ContourEnds)
	fmt.Fprintf(&b, "  Coordinates:\n")
	for _, v := range outline.Vertices {
		onCurve := "Off"
		if v.OnCurve {
			onCurve = "On"
		}
		fmt.Fprintf(&b, "    %8v %8v %3v\n", v.X, v.Y, onCurve)
	}
	return b.String()
}

////////////////////////////////////////////////////////////////

func parseLoca(b []byte, indexToLocFormat int16, numGlyphs uint16, glyfLength uint32) ([]uint32, error) {
	n := int(numGlyphs) + 1
	offsets := make([]uint32, n)
	c := NewCursor(b)
	for i := 0; i < n; i++ {
		if indexToLocFormat == 0 {
			offsets[i] = 2 * uint32(c.ReadUint16())
		} else {
			offsets[i] = c.ReadUint32()
		}
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("loca: %w", err)
	}
	for i := 1; i < n; i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("loca: offsets not ascending at glyphID %d: %w", i-1, ErrMalformedGlyphData)
		}
	}
	if glyfLength < offsets[n-1] {
		return nil, fmt.Errorf("loca: offset %d beyond glyf table: %w", offsets[n-1], ErrMalformedGlyphData)
	}
	return offsets, nil
}

// glyphReader decodes glyph outlines from the glyf table. The flags buffer is scratch space shared by all simple glyphs.
type glyphReader struct {
	glyf  []byte
	loca  []uint32
	maxp  *MaxpTable
	flags []byte
}

func newGlyphReader(glyf []byte, loca []uint32, maxp *MaxpTable) *glyphReader {
	return &glyphReader{
		glyf:  glyf,
		loca:  loca,
		maxp:  maxp,
		flags: make([]byte, maxp.MaxPoints),
	}
}

// Empty returns true if the glyph has a zero-length span in loca.
func (g *glyphReader) Empty(glyphID uint16) bool {
	return g.loca[glyphID] == g.loca[int(glyphID)+1]
}

// Read decodes a glyph. Level is the compound nesting depth, zero for a top-level glyph.
func (g *glyphReader) Read(glyphID uint16, level int) (GlyphOutline, error) {
	outline := GlyphOutline{GlyphID: glyphID}
	if len(g.loca) <= int(glyphID)+1 {
		return outline, fmt.Errorf("glyf: bad glyphID %v: %w", glyphID, ErrMalformedGlyphData)
	} else if g.Empty(glyphID) {
		return outline, nil
	}

	c := NewCursor(g.glyf[g.loca[glyphID]:g.loca[int(glyphID)+1]])
	numberOfContours := c.ReadInt16()
	outline.Bounds.XMin = c.ReadInt16()
	outline.Bounds.YMin = c.ReadInt16()
	outline.Bounds.XMax = c.ReadInt16()
	outline.Bounds.YMax = c.ReadInt16()
	if err := c.Err(); err != nil {
		return outline, fmt.Errorf("glyf: bad header for glyphID %v: %w", glyphID, err)
	}

	var err error
	if 0 <= numberOfContours {
		err = g.readSimple(c, &outline, int(numberOfContours))
	} else {
		err = g.readCompound(c, &outline, level)
	}
	if err != nil {
		return outline, fmt.Errorf("glyf: glyphID %v: %w", glyphID, err)
	}
	return outline, nil
}

func (g *glyphReader) readSimple(c *Cursor, outline *GlyphOutline, numberOfContours int) error {
	if numberOfContours == 0 {
		return nil
	} else if g.maxp.MaxContours != 0 && int(g.maxp.MaxContours) < numberOfContours {
		return fmt.Errorf("%d contours exceed maximum %d: %w", numberOfContours, g.maxp.MaxContours, ErrMalformedGlyphData)
	}

	outline.ContourEnds = make([]uint16, numberOfContours)
	for i := 0; i < numberOfContours; i++ {
		outline.ContourEnds[i] = c.ReadUint16()
	}
	instructionLength := c.ReadUint16()
	_ = c.ReadBytes(uint32(instructionLength))
	if err := c.Err(); err != nil {
		return err
	}
	for i := 1; i < numberOfContours; i++ {
		if outline.ContourEnds[i] <= outline.ContourEnds[i-1] {
			return fmt.Errorf("bad end point for contour %d: %w", i, ErrMalformedGlyphData)
		}
	}

	numPoints := int(outline.ContourEnds[numberOfContours-1]) + 1
	if g.maxp.MaxPoints != 0 && int(g.maxp.MaxPoints) < numPoints {
		return fmt.Errorf("%d points exceed maximum %d: %w", numPoints, g.maxp.MaxPoints, ErrMalformedGlyphData)
	} else if len(g.flags) < numPoints {
		g.flags = make([]byte, numPoints)
	}

	flags := g.flags[:numPoints]
	for i := 0; i < numPoints; i++ {
		flags[i] = c.ReadUint8()
		if flags[i]&flagRepeat != 0 {
			repeat := int(c.ReadUint8())
			if numPoints-i-1 < repeat {
				return fmt.Errorf("flag repeat overruns %d points: %w", numPoints, ErrMalformedGlyphData)
			}
			for j := 1; j <= repeat; j++ {
				flags[i+j] = flags[i]
			}
			i += repeat
		}
	}

	outline.Vertices = make([]Vertex, numPoints)
	var x int32
	for i := 0; i < numPoints; i++ {
		if flags[i]&flagXShort != 0 {
			if flags[i]&flagXSamePos != 0 {
				x += int32(c.ReadUint8())
			} else {
				x -= int32(c.ReadUint8())
			}
		} else if flags[i]&flagXSamePos == 0 {
			x += int32(c.ReadInt16())
		}
		outline.Vertices[i].X = x
		outline.Vertices[i].OnCurve = flags[i]&flagOnCurve != 0
	}

	var y int32
	for i := 0; i < numPoints; i++ {
		if flags[i]&flagYShort != 0 {
			if flags[i]&flagYSamePos != 0 {
				y += int32(c.ReadUint8())
			} else {
				y -= int32(c.ReadUint8())
			}
		} else if flags[i]&flagYSamePos == 0 {
			y += int32(c.ReadInt16())
		}
		outline.Vertices[i].Y = y
	}
	return c.Err()
}

// componentTransform is a 2x2 matrix in F2Dot14 applied as x' = a*x + c*y, y' = b*x + d*y.
type componentTransform struct {
	a, b, c, d F2Dot14
}

var identityTransform = componentTransform{a: 1 << 14, d: 1 << 14}

func (t componentTransform) Apply(x, y int32) (int32, int32) {
	const half = 1 << 13
	xt := (int64(x)*int64(t.a) + int64(y)*int64(t.c) + half) >> 14
	yt := (int64(x)*int64(t.b) + int64(y)*int64(t.d) + half) >> 14
	return int32(xt), int32(yt)
}

// compoundComponent is a single component record of a compound glyph.
type compoundComponent struct {
	flags      uint16
	glyphID    uint16
	arg1, arg2 int32
	transform  componentTransform
}

func (component compoundComponent) hasTransform() bool {
	return component.flags&(weHaveAScale|weHaveAnXAndYScale|weHaveATwoByTwo) != 0
}

func readCompoundComponent(c *Cursor) compoundComponent {
	component := compoundComponent{transform: identityTransform}
	component.flags = c.ReadUint16()
	component.glyphID = c.ReadUint16()
	if component.flags&argsAreWords != 0 {
		if component.flags&argsAreXYValues != 0 {
			component.arg1 = int32(c.ReadInt16())
			component.arg2 = int32(c.ReadInt16())
		} else {
			component.arg1 = int32(c.ReadUint16())
			component.arg2 = int32(c.ReadUint16())
		}
	} else {
		if component.flags&argsAreXYValues != 0 {
			component.arg1 = int32(c.ReadInt8())
			component.arg2 = int32(c.ReadInt8())
		} else {
			component.arg1 = int32(c.ReadUint8())
			component.arg2 = int32(c.ReadUint8())
		}
	}
	if component.flags&weHaveAScale != 0 {
		component.transform.a = F2Dot14(c.ReadInt16())
		component.transform.d = component.transform.a
	} else if component.flags&weHaveAnXAndYScale != 0 {
		component.transform.a = F2Dot14(c.ReadInt16())
		component.transform.d = F2Dot14(c.ReadInt16())
	} else if component.flags&weHaveATwoByTwo != 0 {
		component.transform.a = F2Dot14(c.ReadInt16())
		component.transform.b = F2Dot14(c.ReadInt16())
		component.transform.c = F2Dot14(c.ReadInt16())
		component.transform.d = F2Dot14(c.ReadInt16())
	}
	return component
}

func (g *glyphReader) readCompound(c *Cursor, outline *GlyphOutline, level int) error {
	if MaxCompoundDepth < level {
		return fmt.Errorf("compound glyphs nested deeper than %d: %w", MaxCompoundDepth, ErrMalformedGlyphData)
	}

	maxPoints := g.maxp.MaxPoints
	if maxPoints < g.maxp.MaxCompositePoints {
		maxPoints = g.maxp.MaxCompositePoints
	}
	var flags uint16
	for {
		component := readCompoundComponent(c)
		flags = component.flags
		if err := c.Err(); err != nil {
			return err
		} else if len(g.loca) <= int(component.glyphID)+1 {
			return fmt.Errorf("bad component glyphID %v: %w", component.glyphID, ErrMalformedGlyphData)
		}

		child, err := g.Read(component.glyphID, level+1)
		if err != nil {
			return err
		}
		if component.hasTransform() {
			for i, v := range child.Vertices {
				child.Vertices[i].X, child.Vertices[i].Y = component.transform.Apply(v.X, v.Y)
			}
		}

		var dx, dy int32
		if component.flags&argsAreXYValues != 0 {
			dx, dy = component.arg1, component.arg2
			if component.flags&scaledComponentOffset != 0 && component.hasTransform() {
				dx, dy = component.transform.Apply(dx, dy)
			}
		} else {
			// align the parent's point arg1 with the child's point arg2
			if len(outline.Vertices) <= int(component.arg1) || len(child.Vertices) <= int(component.arg2) {
				return fmt.Errorf("bad anchor points %d and %d for component %v: %w", component.arg1, component.arg2, component.glyphID, ErrMalformedGlyphData)
			}
			p, q := outline.Vertices[component.arg1], child.Vertices[component.arg2]
			dx, dy = p.X-q.X, p.Y-q.Y
		}

		numPoints := len(outline.Vertices)
		if maxPoints != 0 && int(maxPoints) < numPoints+len(child.Vertices) {
			return fmt.Errorf("%d composite points exceed maximum %d: %w", numPoints+len(child.Vertices), maxPoints, ErrMalformedGlyphData)
		}
		for _, end := range child.ContourEnds {
			outline.ContourEnds = append(outline.ContourEnds, uint16(numPoints)+end)
		}
		for _, v := range child.Vertices {
			outline.Vertices = append(outline.Vertices, Vertex{v.X + dx, v.Y + dy, v.OnCurve})
		}

		if component.flags&moreComponents == 0 {
			break
		}
	}
	if flags&weHaveInstructions != 0 {
		// instructions are skipped, but they must lie within the glyph
		numInstructions := c.ReadUint16()
		c.ReadBytes(uint32(numInstructions))
		if err := c.Err(); err != nil {
			return fmt.Errorf("compound instructions: %w", err)
		}
	}
	return nil
}
