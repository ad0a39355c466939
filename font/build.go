package font

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Component is a component of a compound glyph built by Builder. Transform holds zero (none), one (uniform scale), two (x and y scale), or four (2x2 matrix) values. When Anchored is set, DX and DY are the point indices of the parent and child that are aligned instead of an offset.
type Component struct {
	GlyphID     uint16
	DX, DY      int16
	Transform   []F2Dot14
	Anchored    bool
	ScaleOffset bool
}

type builderGlyph struct {
	advance     uint16
	lsb         int16
	data        []byte
	numPoints   int
	numContours int
	compound    bool
	depth       int
}

// Builder writes minimal TrueType fonts with the tables needed by ParseFont. Glyph 0 is an empty .notdef glyph.
type Builder struct {
	UnitsPerEm uint16
	Ascender   int16
	Descender  int16
	FamilyName string

	// maxp overrides, used when non-zero
	MaxPoints   uint16
	MaxContours uint16

	glyphs []builderGlyph
	runes  map[rune]uint16
}

// NewBuilder returns a builder for a font with the given units per em.
func NewBuilder(unitsPerEm uint16) *Builder {
	b := &Builder{
		UnitsPerEm: unitsPerEm,
		Ascender:   int16(unitsPerEm) * 4 / 5,
		Descender:  -int16(unitsPerEm) / 5,
		runes:      map[rune]uint16{},
	}
	b.AddEmptyGlyph(unitsPerEm / 2) // .notdef
	return b
}

// Map maps a code point to a glyph.
func (b *Builder) Map(r rune, glyphID uint16) {
	b.runes[r] = glyphID
}

// AddEmptyGlyph adds a glyph without contours, such as a space.
func (b *Builder) AddEmptyGlyph(advance uint16) uint16 {
	b.glyphs = append(b.glyphs, builderGlyph{advance: advance})
	return uint16(len(b.glyphs) - 1)
}

// AddRawGlyph adds a glyph with the given glyf data.
func (b *Builder) AddRawGlyph(advance uint16, data []byte) uint16 {
	b.glyphs = append(b.glyphs, builderGlyph{advance: advance, data: data})
	return uint16(len(b.glyphs) - 1)
}

// AddSimpleGlyph adds a glyph with the given contours. Each contour must have at least one vertex.
func (b *Builder) AddSimpleGlyph(advance uint16, contours ...[]Vertex) uint16 {
	var xMin, yMin, xMax, yMax int32 = math.MaxInt32, math.MaxInt32, math.MinInt32, math.MinInt32
	vertices := []Vertex{}
	w := parse.NewBinaryWriter([]byte{})
	w.WriteInt16(int16(len(contours))) // numberOfContours
	w.WriteBytes(make([]byte, 8))      // bounding box (set later)
	for _, contour := range contours {
		vertices = append(vertices, contour...)
		w.WriteUint16(uint16(len(vertices) - 1)) // endPtsOfContours
	}
	w.WriteUint16(0) // instructionLength

	flags := make([]byte, len(vertices))
	xs, ys := parse.NewBinaryWriter([]byte{}), parse.NewBinaryWriter([]byte{})
	var x, y int32
	for i, v := range vertices {
		xMin, xMax = min(xMin, v.X), max(xMax, v.X)
		yMin, yMax = min(yMin, v.Y), max(yMax, v.Y)
		if v.OnCurve {
			flags[i] |= flagOnCurve
		}
		flags[i] |= writeCoordinate(xs, v.X-x, flagXShort, flagXSamePos)
		flags[i] |= writeCoordinate(ys, v.Y-y, flagYShort, flagYSamePos)
		x, y = v.X, v.Y
	}
	for i := 0; i < len(flags); {
		repeat := 0
		for i+repeat+1 < len(flags) && flags[i+repeat+1] == flags[i] && repeat < 255 {
			repeat++
		}
		if 1 < repeat {
			w.WriteUint8(flags[i] | flagRepeat)
			w.WriteUint8(uint8(repeat))
			i += repeat + 1
		} else {
			w.WriteUint8(flags[i])
			i++
		}
	}
	w.WriteBytes(xs.Bytes())
	w.WriteBytes(ys.Bytes())

	data := w.Bytes()
	var lsb int16
	if 0 < len(vertices) {
		lsb = int16(xMin)
		binary.BigEndian.PutUint16(data[2:], uint16(int16(xMin)))
		binary.BigEndian.PutUint16(data[4:], uint16(int16(yMin)))
		binary.BigEndian.PutUint16(data[6:], uint16(int16(xMax)))
		binary.BigEndian.PutUint16(data[8:], uint16(int16(yMax)))
	}
	b.glyphs = append(b.glyphs, builderGlyph{
		advance:     advance,
		lsb:         lsb,
		data:        data,
		numPoints:   len(vertices),
		numContours: len(contours),
	})
	return uint16(len(b.glyphs) - 1)
}

func writeCoordinate(w *parse.BinaryWriter, d int32, short, samePos byte) byte {
	if d == 0 {
		return samePos
	} else if -255 <= d && d <= 255 {
		if 0 < d {
			w.WriteUint8(uint8(d))
			return short | samePos
		}
		w.WriteUint8(uint8(-d))
		return short
	}
	w.WriteInt16(int16(d))
	return 0
}

// AddCompoundGlyph adds a glyph composed of previously added glyphs.
func (b *Builder) AddCompoundGlyph(advance uint16, components ...Component) uint16 {
	glyph := builderGlyph{advance: advance, compound: true}
	w := parse.NewBinaryWriter([]byte{})
	w.WriteInt16(-1)              // numberOfContours
	w.WriteBytes(make([]byte, 8)) // bounding box
	for i, component := range components {
		var flags uint16
		if !component.Anchored {
			flags |= argsAreXYValues
		}
		words := component.DX < math.MinInt8 || math.MaxInt8 < component.DX || component.DY < math.MinInt8 || math.MaxInt8 < component.DY
		if component.Anchored {
			words = component.DX < 0 || math.MaxUint8 < component.DX || component.DY < 0 || math.MaxUint8 < component.DY
		}
		if words {
			flags |= argsAreWords
		}
		switch len(component.Transform) {
		case 1:
			flags |= weHaveAScale
		case 2:
			flags |= weHaveAnXAndYScale
		case 4:
			flags |= weHaveATwoByTwo
		}
		if component.ScaleOffset {
			flags |= scaledComponentOffset
		}
		if i+1 < len(components) {
			flags |= moreComponents
		}

		w.WriteUint16(flags)
		w.WriteUint16(component.GlyphID)
		if words {
			w.WriteInt16(component.DX)
			w.WriteInt16(component.DY)
		} else {
			w.WriteUint8(uint8(component.DX))
			w.WriteUint8(uint8(component.DY))
		}
		for _, f := range component.Transform {
			w.WriteInt16(int16(f))
		}

		if int(component.GlyphID) < len(b.glyphs) {
			child := b.glyphs[component.GlyphID]
			glyph.numPoints += child.numPoints
			glyph.numContours += child.numContours
			glyph.depth = max(glyph.depth, child.depth+1)
		}
	}
	glyph.data = w.Bytes()
	b.glyphs = append(b.glyphs, glyph)
	return uint16(len(b.glyphs) - 1)
}

// Bytes writes out the font file.
func (b *Builder) Bytes() []byte {
	return writeSFNT(b.tables())
}

func (b *Builder) tables() map[string][]byte {
	tables := map[string][]byte{}
	glyf, loca, indexToLocFormat := b.writeGlyf()
	tables["glyf"] = glyf
	tables["loca"] = loca
	tables["head"] = b.writeHead(indexToLocFormat)
	tables["maxp"] = b.writeMaxp()
	hmtx, numberOfHMetrics := b.writeHmtx()
	tables["hmtx"] = hmtx
	tables["hhea"] = b.writeHhea(numberOfHMetrics)
	tables["cmap"] = b.writeCmap()
	if b.FamilyName != "" {
		tables["name"] = b.writeName()
	}
	return tables
}

func writeSFNT(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00010000) // sfntVersion
	numTables := uint16(len(tags))
	entrySelector := uint16(math.Log2(float64(numTables)))
	searchRange := uint16(1 << (entrySelector + 4))
	w.WriteUint16(numTables)                  // numTables
	w.WriteUint16(searchRange)                // searchRange
	w.WriteUint16(entrySelector)              // entrySelector
	w.WriteUint16(numTables<<4 - searchRange) // rangeShift

	// table records are written at the end
	w.WriteBytes(make([]byte, uint32(numTables)<<4))

	var checksumAdjustmentPos uint32
	offsets, lengths := make([]uint32, numTables), make([]uint32, numTables)
	for i, tag := range tags {
		offsets[i] = uint32(w.Len())
		if tag == "head" {
			checksumAdjustmentPos = uint32(w.Len()) + 8
		}
		w.WriteBytes(tables[tag])
		lengths[i] = uint32(w.Len()) - offsets[i]

		padding := (4 - lengths[i]&3) & 3
		for j := 0; j < int(padding); j++ {
			w.WriteByte(0)
		}
	}

	buf := w.Bytes()
	for i, tag := range tags {
		pos := 12 + i<<4
		copy(buf[pos:], []byte(tag))
		padding := (4 - lengths[i]&3) & 3
		binary.BigEndian.PutUint32(buf[pos+4:], calcChecksum(buf[offsets[i]:offsets[i]+lengths[i]+padding]))
		binary.BigEndian.PutUint32(buf[pos+8:], offsets[i])
		binary.BigEndian.PutUint32(buf[pos+12:], lengths[i])
	}
	if checksumAdjustmentPos != 0 {
		binary.BigEndian.PutUint32(buf[checksumAdjustmentPos:], 0xB1B0AFBA-calcChecksum(buf))
	}
	return buf
}

func (b *Builder) writeGlyf() ([]byte, []byte, int16) {
	glyf := parse.NewBinaryWriter([]byte{})
	offsets := make([]uint32, len(b.glyphs)+1)
	for i, glyph := range b.glyphs {
		offsets[i] = uint32(glyf.Len())
		glyf.WriteBytes(glyph.data)
		for glyf.Len()%4 != 0 {
			glyf.WriteByte(0)
		}
	}
	offsets[len(b.glyphs)] = uint32(glyf.Len())

	var indexToLocFormat int16
	loca := parse.NewBinaryWriter([]byte{})
	if math.MaxUint16 < glyf.Len()/2 {
		indexToLocFormat = 1
	}
	for _, offset := range offsets {
		if indexToLocFormat == 0 {
			loca.WriteUint16(uint16(offset / 2))
		} else {
			loca.WriteUint32(offset)
		}
	}
	return glyf.Bytes(), loca.Bytes(), indexToLocFormat
}

func (b *Builder) bounds() (int16, int16, int16, int16) {
	var xMin, yMin, xMax, yMax int16 = math.MaxInt16, math.MaxInt16, math.MinInt16, math.MinInt16
	for _, glyph := range b.glyphs {
		if glyph.compound || len(glyph.data) < 10 || glyph.numPoints == 0 {
			continue
		}
		xMin = min(xMin, int16(binary.BigEndian.Uint16(glyph.data[2:])))
		yMin = min(yMin, int16(binary.BigEndian.Uint16(glyph.data[4:])))
		xMax = max(xMax, int16(binary.BigEndian.Uint16(glyph.data[6:])))
		yMax = max(yMax, int16(binary.BigEndian.Uint16(glyph.data[8:])))
	}
	if xMax < xMin {
		return 0, 0, 0, 0
	}
	return xMin, yMin, xMax, yMax
}

func (b *Builder) writeHead(indexToLocFormat int16) []byte {
	xMin, yMin, xMax, yMax := b.bounds()
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1)          // majorVersion
	w.WriteUint16(0)          // minorVersion
	w.WriteUint32(0x00010000) // fontRevision
	w.WriteUint32(0)          // checksumAdjustment
	w.WriteUint32(0x5F0F3CF5) // magicNumber
	w.WriteUint16(0x000B)     // flags
	w.WriteUint16(b.UnitsPerEm)
	w.WriteInt64(0) // created
	w.WriteInt64(0) // modified
	w.WriteInt16(xMin)
	w.WriteInt16(yMin)
	w.WriteInt16(xMax)
	w.WriteInt16(yMax)
	w.WriteUint16(0) // macStyle
	w.WriteUint16(8) // lowestRecPPEM
	w.WriteInt16(2)  // fontDirectionHint
	w.WriteInt16(indexToLocFormat)
	w.WriteInt16(0) // glyphDataFormat
	return w.Bytes()
}

func (b *Builder) writeMaxp() []byte {
	var maxPoints, maxContours, maxCompositePoints, maxCompositeContours, maxComponentDepth int
	for _, glyph := range b.glyphs {
		if glyph.compound {
			maxCompositePoints = max(maxCompositePoints, glyph.numPoints)
			maxCompositeContours = max(maxCompositeContours, glyph.numContours)
			maxComponentDepth = max(maxComponentDepth, glyph.depth)
		} else {
			maxPoints = max(maxPoints, glyph.numPoints)
			maxContours = max(maxContours, glyph.numContours)
		}
	}
	if b.MaxPoints != 0 {
		maxPoints = int(b.MaxPoints)
	}
	if b.MaxContours != 0 {
		maxContours = int(b.MaxContours)
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00010000) // version
	w.WriteUint16(uint16(len(b.glyphs)))
	w.WriteUint16(uint16(maxPoints))
	w.WriteUint16(uint16(maxContours))
	w.WriteUint16(uint16(maxCompositePoints))
	w.WriteUint16(uint16(maxCompositeContours))
	w.WriteUint16(2) // maxZones
	w.WriteUint16(0) // maxTwilightPoints
	w.WriteUint16(0) // maxStorage
	w.WriteUint16(0) // maxFunctionDefs
	w.WriteUint16(0) // maxInstructionDefs
	w.WriteUint16(0) // maxStackElements
	w.WriteUint16(0) // maxSizeOfInstructions
	w.WriteUint16(1) // maxComponentElements
	w.WriteUint16(uint16(maxComponentDepth))
	return w.Bytes()
}

func (b *Builder) writeHmtx() ([]byte, uint16) {
	// trailing glyphs with equal advances share the last long metric
	n := len(b.glyphs)
	for 1 < n && b.glyphs[n-1].advance == b.glyphs[n-2].advance {
		n--
	}

	w := parse.NewBinaryWriter([]byte{})
	for i, glyph := range b.glyphs {
		if i < n {
			w.WriteUint16(glyph.advance)
		}
		w.WriteInt16(glyph.lsb)
	}
	return w.Bytes(), uint16(n)
}

func (b *Builder) writeHhea(numberOfHMetrics uint16) []byte {
	var advanceWidthMax uint16
	for _, glyph := range b.glyphs {
		advanceWidthMax = max(advanceWidthMax, glyph.advance)
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00010000) // version
	w.WriteInt16(b.Ascender)
	w.WriteInt16(b.Descender)
	w.WriteInt16(0) // lineGap
	w.WriteUint16(advanceWidthMax)
	w.WriteInt16(0) // minLeftSideBearing
	w.WriteInt16(0) // minRightSideBearing
	w.WriteInt16(0) // xMaxExtent
	w.WriteInt16(1) // caretSlopeRise
	w.WriteInt16(0) // caretSlopeRun
	w.WriteInt16(0) // caretOffset
	w.WriteBytes(make([]byte, 8))
	w.WriteInt16(0) // metricDataFormat
	w.WriteUint16(numberOfHMetrics)
	return w.Bytes()
}

func (b *Builder) writeCmap() []byte {
	rs := make([]rune, 0, len(b.runes))
	for r := range b.runes {
		if 0 <= r && r < 0xFFFF {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })

	// arrayStart is the glyphIndexArray position of each segment, or -1 when it uses idDelta
	cmap := CharacterMap{Format: 4}
	arrayStart := []int{}
	addSegment := func(first, last rune) {
		cmap.StartCode = append(cmap.StartCode, uint16(first))
		cmap.EndCode = append(cmap.EndCode, uint16(last))
		contiguous := true
		for r := first + 1; r <= last; r++ {
			if b.runes[r] != b.runes[r-1]+1 {
				contiguous = false
			}
		}
		if contiguous {
			cmap.IDDelta = append(cmap.IDDelta, int16(b.runes[first]-uint16(first)))
			arrayStart = append(arrayStart, -1)
		} else {
			cmap.IDDelta = append(cmap.IDDelta, 0)
			arrayStart = append(arrayStart, len(cmap.GlyphIndexArray))
			for r := first; r <= last; r++ {
				cmap.GlyphIndexArray = append(cmap.GlyphIndexArray, b.runes[r])
			}
		}
	}
	for i := 0; i < len(rs); {
		j := i + 1
		for j < len(rs) && rs[j] == rs[j-1]+1 {
			j++
		}
		addSegment(rs[i], rs[j-1])
		i = j
	}
	cmap.StartCode = append(cmap.StartCode, 0xFFFF)
	cmap.EndCode = append(cmap.EndCode, 0xFFFF)
	cmap.IDDelta = append(cmap.IDDelta, 1)
	arrayStart = append(arrayStart, -1)

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)  // version
	w.WriteUint16(1)  // numTables
	w.WriteUint16(3)  // platformID
	w.WriteUint16(1)  // encodingID
	w.WriteUint32(12) // offset

	start := w.Len()
	segCount := uint16(len(cmap.EndCode))
	searchRange := uint16(math.Exp2(math.Floor(math.Log2(float64(segCount)))))
	entrySelector := uint16(math.Log2(float64(searchRange)))
	w.WriteUint16(4)                            // format
	w.WriteUint16(0)                            // length (set later)
	w.WriteUint16(0)                            // language
	w.WriteUint16(segCount * 2)                 // segCountX2
	w.WriteUint16(searchRange * 2)              // searchRange
	w.WriteUint16(entrySelector)                // entrySelector
	w.WriteUint16((segCount - searchRange) * 2) // rangeShift
	for _, endCode := range cmap.EndCode {
		w.WriteUint16(endCode)
	}
	w.WriteUint16(0) // reservedPad
	for _, startCode := range cmap.StartCode {
		w.WriteUint16(startCode)
	}
	for _, idDelta := range cmap.IDDelta {
		w.WriteInt16(idDelta)
	}
	for i, pos := range arrayStart {
		if pos == -1 {
			w.WriteUint16(0) // idRangeOffset
		} else {
			w.WriteUint16((segCount - uint16(i) + uint16(pos)) * 2) // times 2 since entries are 16 bit
		}
	}
	for _, glyphID := range cmap.GlyphIndexArray {
		w.WriteUint16(glyphID)
	}
	binary.BigEndian.PutUint16(w.Bytes()[start+2:], uint16(w.Len()-start)) // set length
	return w.Bytes()
}

func (b *Builder) writeName() []byte {
	windows, _, _ := transform.String(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder(), b.FamilyName)
	mac, _, err := transform.String(charmap.Macintosh.NewEncoder(), b.FamilyName)
	if err != nil {
		mac = ""
	}

	records := []NameRecord{
		{Platform: PlatformMacintosh, Encoding: 0, Language: 0, Name: NameFontFamily, Value: []byte(mac)},
		{Platform: PlatformWindows, Encoding: 1, Language: 0x0409, Name: NameFontFamily, Value: []byte(windows)},
	}
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0) // version
	w.WriteUint16(uint16(len(records)))
	w.WriteUint16(uint16(6 + 12*len(records))) // storageOffset
	var offset uint16
	for _, record := range records {
		w.WriteUint16(uint16(record.Platform))
		w.WriteUint16(record.Encoding)
		w.WriteUint16(record.Language)
		w.WriteUint16(uint16(record.Name))
		w.WriteUint16(uint16(len(record.Value)))
		w.WriteUint16(offset)
		offset += uint16(len(record.Value))
	}
	for _, record := range records {
		w.WriteBytes(record.Value)
	}
	return w.Bytes()
}
