package font

import (
	"fmt"
)

////////////////////////////////////////////////////////////////

// HeadTable holds the fields of the font header used for outline decoding.
type HeadTable struct {
	FontRevision           uint32
	Flags                  uint16
	UnitsPerEm             uint16
	XMin, YMin, XMax, YMax int16
	MacStyle               uint16
	LowestRecPPEM          uint16
	IndexToLocFormat       int16
	GlyphDataFormat        int16
}

func parseHead(b []byte) (*HeadTable, error) {
	if len(b) < 54 {
		return nil, fmt.Errorf("head: bad table length %d: %w", len(b), ErrUnexpectedEndOfData)
	}

	head := &HeadTable{}
	c := NewCursor(b)
	majorVersion := c.ReadUint16()
	_ = c.ReadUint16() // minorVersion
	if majorVersion != 1 {
		return nil, fmt.Errorf("head: bad version %d: %w", majorVersion, ErrMalformedGlyphData)
	}
	head.FontRevision = c.ReadUint32()
	_ = c.ReadUint32()                // checksumAdjustment
	if c.ReadUint32() != 0x5F0F3CF5 { // magicNumber
		return nil, fmt.Errorf("head: bad magic number: %w", ErrMalformedGlyphData)
	}
	head.Flags = c.ReadUint16()
	head.UnitsPerEm = c.ReadUint16()
	_ = c.ReadUint64() // created
	_ = c.ReadUint64() // modified
	head.XMin = c.ReadInt16()
	head.YMin = c.ReadInt16()
	head.XMax = c.ReadInt16()
	head.YMax = c.ReadInt16()
	head.MacStyle = c.ReadUint16()
	head.LowestRecPPEM = c.ReadUint16()
	_ = c.ReadInt16() // fontDirectionHint
	head.IndexToLocFormat = c.ReadInt16()
	head.GlyphDataFormat = c.ReadInt16()
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("head: %w", err)
	} else if head.IndexToLocFormat != 0 && head.IndexToLocFormat != 1 {
		return nil, fmt.Errorf("head: bad indexToLocFormat %d: %w", head.IndexToLocFormat, ErrMalformedGlyphData)
	} else if head.UnitsPerEm == 0 {
		return nil, fmt.Errorf("head: bad unitsPerEm: %w", ErrMalformedGlyphData)
	}
	return head, nil
}

////////////////////////////////////////////////////////////////

// MaxpTable holds the declared maxima of the font. The maxima are zero for a version 0.5 table, in which case they are not enforced.
type MaxpTable struct {
	NumGlyphs             uint16
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

func parseMaxp(b []byte) (*MaxpTable, error) {
	maxp := &MaxpTable{}
	c := NewCursor(b)
	version := c.ReadUint32()
	maxp.NumGlyphs = c.ReadUint16()
	if version == 0x00010000 {
		maxp.MaxPoints = c.ReadUint16()
		maxp.MaxContours = c.ReadUint16()
		maxp.MaxCompositePoints = c.ReadUint16()
		maxp.MaxCompositeContours = c.ReadUint16()
		_ = c.ReadBytes(12) // maxZones, maxTwilightPoints, maxStorage, maxFunctionDefs, maxInstructionDefs, maxStackElements
		maxp.MaxSizeOfInstructions = c.ReadUint16()
		maxp.MaxComponentElements = c.ReadUint16()
		maxp.MaxComponentDepth = c.ReadUint16()
	} else if version != 0x00005000 {
		return nil, fmt.Errorf("maxp: bad version 0x%08X: %w", version, ErrMalformedGlyphData)
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("maxp: %w", err)
	} else if maxp.NumGlyphs == 0 {
		return nil, fmt.Errorf("maxp: font has no glyphs: %w", ErrMalformedGlyphData)
	}
	return maxp, nil
}

////////////////////////////////////////////////////////////////

// HheaTable holds the horizontal header.
type HheaTable struct {
	Ascender         int16
	Descender        int16
	LineGap          int16
	AdvanceWidthMax  uint16
	NumberOfHMetrics uint16
}

func parseHhea(b []byte, numGlyphs uint16) (*HheaTable, error) {
	// requires data from maxp
	if len(b) < 36 {
		return nil, fmt.Errorf("hhea: bad table length %d: %w", len(b), ErrUnexpectedEndOfData)
	}

	hhea := &HheaTable{}
	c := NewCursor(b)
	_ = c.ReadUint32() // version
	hhea.Ascender = c.ReadInt16()
	hhea.Descender = c.ReadInt16()
	hhea.LineGap = c.ReadInt16()
	hhea.AdvanceWidthMax = c.ReadUint16()
	c.Seek(34)
	hhea.NumberOfHMetrics = c.ReadUint16()
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("hhea: %w", err)
	} else if hhea.NumberOfHMetrics == 0 || numGlyphs < hhea.NumberOfHMetrics {
		return nil, fmt.Errorf("hhea: bad numberOfHMetrics %d: %w", hhea.NumberOfHMetrics, ErrMalformedGlyphData)
	}
	return hhea, nil
}

////////////////////////////////////////////////////////////////

// HmtxTable holds the horizontal metrics. Glyphs beyond the long metrics share the last advance width.
type HmtxTable struct {
	Advances         []uint16
	LeftSideBearings []int16 // for all glyphs
}

// AdvanceWidth returns the advance width of a glyph in font units.
func (hmtx *HmtxTable) AdvanceWidth(glyphID uint16) uint16 {
	if int(glyphID) >= len(hmtx.Advances) {
		glyphID = uint16(len(hmtx.Advances) - 1)
	}
	return hmtx.Advances[glyphID]
}

// LeftSideBearing returns the left side bearing of a glyph in font units.
func (hmtx *HmtxTable) LeftSideBearing(glyphID uint16) int16 {
	if int(glyphID) >= len(hmtx.LeftSideBearings) {
		return 0
	}
	return hmtx.LeftSideBearings[glyphID]
}

func parseHmtx(b []byte, numGlyphs, numberOfHMetrics uint16) (*HmtxTable, error) {
	// requires data from hhea and maxp
	if uint32(len(b)) < 4*uint32(numberOfHMetrics) {
		return nil, fmt.Errorf("hmtx: bad table length %d: %w", len(b), ErrUnexpectedEndOfData)
	}

	hmtx := &HmtxTable{
		Advances:         make([]uint16, numberOfHMetrics),
		LeftSideBearings: make([]int16, numGlyphs),
	}
	c := NewCursor(b)
	for i := 0; i < int(numberOfHMetrics); i++ {
		hmtx.Advances[i] = c.ReadUint16()
		hmtx.LeftSideBearings[i] = c.ReadInt16()
	}
	// some fonts truncate the trailing left side bearings
	for i := int(numberOfHMetrics); i < int(numGlyphs) && 2 <= c.Len(); i++ {
		hmtx.LeftSideBearings[i] = c.ReadInt16()
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("hmtx: %w", err)
	}
	return hmtx, nil
}
