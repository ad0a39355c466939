package font

import (
	"fmt"
	"sort"
)

// CharacterMap is a format 4 cmap subtable, mapping the Basic Multilingual Plane to glyph indices by segments. EndCode is strictly ascending and StartCode[i] <= EndCode[i] for every segment.
type CharacterMap struct {
	Format          uint16
	Language        uint16
	EndCode         []uint16
	StartCode       []uint16
	IDDelta         []int16
	IDRangeOffset   []uint16
	GlyphIndexArray []uint16
}

// NumSegments returns the number of segments.
func (cmap *CharacterMap) NumSegments() int {
	return len(cmap.EndCode)
}

// GlyphIndex returns the glyph index for a code point, or 0 (.notdef) when the code point falls outside all segments.
func (cmap *CharacterMap) GlyphIndex(r rune) uint16 {
	if r < 0 || 0xFFFF < r {
		return 0
	}
	c := uint16(r)

	n := len(cmap.EndCode)
	i := sort.Search(n, func(i int) bool { return c <= cmap.EndCode[i] })
	if i == n || c < cmap.StartCode[i] {
		return 0
	} else if cmap.IDRangeOffset[i] == 0 {
		// modulo 65536 by integer overflow
		return c + uint16(cmap.IDDelta[i])
	}

	// idRangeOffset/2  ->  offset value to index of words
	// c-startCode  ->  difference of code point with startCode
	// -(n-i)  ->  subtract offset from the current idRangeOffset item
	index := int(cmap.IDRangeOffset[i]/2) + int(c-cmap.StartCode[i]) - (n - i)
	if index < 0 || len(cmap.GlyphIndexArray) <= index {
		return 0
	}
	glyphID := cmap.GlyphIndexArray[index]
	if glyphID != 0 {
		glyphID += uint16(cmap.IDDelta[i])
	}
	return glyphID
}

// Ranges calls f for every mapped code point range. Code point 0xFFFF of the final segment is not reported.
func (cmap *CharacterMap) Ranges(f func(start, end rune)) {
	for i := range cmap.EndCode {
		start, end := cmap.StartCode[i], cmap.EndCode[i]
		if start == 0xFFFF {
			continue
		}
		f(rune(start), rune(end))
	}
}

// ParseCharacterMap parses the cmap table and returns its first format 4 subtable.
func ParseCharacterMap(b []byte) (*CharacterMap, error) {
	c := NewCursor(b)
	if version := c.ReadUint16(); version != 0 {
		return nil, fmt.Errorf("cmap: bad version %d: %w", version, ErrMalformedGlyphData)
	}
	numTables := c.ReadUint16()
	formats := []uint16{}
	for j := 0; j < int(numTables); j++ {
		platformID := c.ReadUint16()
		encodingID := c.ReadUint16()
		offset := c.ReadUint32()
		if c.Err() != nil {
			break
		}

		pos := c.Pos()
		c.Seek(offset)
		format := c.ReadUint16()
		if c.Err() != nil {
			return nil, fmt.Errorf("cmap: bad offset for subtable %d: %w", j, c.Err())
		} else if format == 4 {
			cmap, err := parseCmapFormat4(b[offset:])
			if err != nil {
				return nil, fmt.Errorf("cmap: subtable %d: %w", j, err)
			}
			Logger().Debug("cmap subtable", "index", j, "platform", platformID, "encoding", encodingID, "segments", cmap.NumSegments())
			return cmap, nil
		}
		formats = append(formats, format)
		c.Seek(pos)
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("cmap: %w", err)
	}
	return nil, fmt.Errorf("cmap: unsupported formats %v: %w", formats, ErrMalformedGlyphData)
}

func parseCmapFormat4(b []byte) (*CharacterMap, error) {
	c := NewCursor(b)
	cmap := &CharacterMap{}
	cmap.Format = c.ReadUint16()
	length := uint32(c.ReadUint16())
	cmap.Language = c.ReadUint16()
	segCountX2 := c.ReadUint16()
	_ = c.ReadUint16() // searchRange
	_ = c.ReadUint16() // entrySelector
	_ = c.ReadUint16() // rangeShift
	if err := c.Err(); err != nil {
		return nil, err
	} else if segCountX2 == 0 || segCountX2%2 != 0 {
		return nil, fmt.Errorf("bad segCountX2 %d: %w", segCountX2, ErrMalformedGlyphData)
	}

	// length is limited to 16 bits and overflows in some large fonts
	if length < 14 || uint32(len(b)) < length {
		length = uint32(len(b))
	}

	segCount := int(segCountX2 / 2)
	cmap.EndCode = make([]uint16, segCount)
	for i := 0; i < segCount; i++ {
		cmap.EndCode[i] = c.ReadUint16()
	}
	_ = c.ReadUint16() // reservedPad
	cmap.StartCode = make([]uint16, segCount)
	for i := 0; i < segCount; i++ {
		cmap.StartCode[i] = c.ReadUint16()
	}
	cmap.IDDelta = make([]int16, segCount)
	for i := 0; i < segCount; i++ {
		cmap.IDDelta[i] = c.ReadInt16()
	}
	cmap.IDRangeOffset = make([]uint16, segCount)
	for i := 0; i < segCount; i++ {
		cmap.IDRangeOffset[i] = c.ReadUint16()
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < segCount; i++ {
		if 0 < i && cmap.EndCode[i] <= cmap.EndCode[i-1] {
			return nil, fmt.Errorf("endCode not ascending at segment %d: %w", i, ErrMalformedGlyphData)
		} else if cmap.EndCode[i] < cmap.StartCode[i] {
			return nil, fmt.Errorf("startCode after endCode at segment %d: %w", i, ErrMalformedGlyphData)
		}
	}

	var n uint32
	if c.Pos() < length {
		n = (length - c.Pos()) / 2
	}
	cmap.GlyphIndexArray = make([]uint16, n)
	for i := uint32(0); i < n; i++ {
		cmap.GlyphIndexArray[i] = c.ReadUint16()
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return cmap, nil
}
