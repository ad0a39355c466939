package font

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/test"
)

func TestCharacterMap(t *testing.T) {
	b := NewBuilder(1000)
	b.Map(' ', 1)
	b.Map('A', 2)
	b.Map('B', 3)
	b.Map('C', 4)
	b.Map('a', 7) // glyphIndexArray
	b.Map('b', 5)
	b.Map('c', 6)
	b.Map(0xF000, 9) // idDelta wraps around
	cmap, err := ParseCharacterMap(b.writeCmap())
	test.Error(t, err)
	test.T(t, cmap.Format, uint16(4))
	test.T(t, cmap.NumSegments(), 5)

	var tests = []struct {
		r       rune
		glyphID uint16
	}{
		{' ', 1},
		{'A', 2},
		{'B', 3},
		{'C', 4},
		{'a', 7},
		{'b', 5},
		{'c', 6},
		{0xF000, 9},
		{'!', 0}, // gap between segments
		{'D', 0},
		{'0', 0},
		{0, 0},
		{0xFFFF, 0},
		{0x10000, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			test.T(t, cmap.GlyphIndex(tt.r), tt.glyphID)
			test.T(t, cmap.GlyphIndex(tt.r), tt.glyphID) // deterministic
		})
	}

	ranges := [][2]rune{}
	cmap.Ranges(func(start, end rune) {
		ranges = append(ranges, [2]rune{start, end})
	})
	test.T(t, ranges, [][2]rune{{' ', ' '}, {'A', 'C'}, {'a', 'c'}, {0xF000, 0xF000}})
}

func TestCharacterMapRangeOffsetDelta(t *testing.T) {
	cmap := &CharacterMap{
		EndCode:         []uint16{10, 0xFFFF},
		StartCode:       []uint16{5, 0xFFFF},
		IDDelta:         []int16{2, 1},
		IDRangeOffset:   []uint16{4, 0},
		GlyphIndexArray: []uint16{0, 7, 8},
	}
	test.T(t, cmap.GlyphIndex(4), uint16(0))
	test.T(t, cmap.GlyphIndex(5), uint16(0)) // zero is not offset by idDelta
	test.T(t, cmap.GlyphIndex(6), uint16(9))
	test.T(t, cmap.GlyphIndex(7), uint16(10))
	test.T(t, cmap.GlyphIndex(8), uint16(0)) // beyond glyphIndexArray
}

func TestCharacterMapSubtableSelection(t *testing.T) {
	b := NewBuilder(1000)
	b.Map('x', 3)
	format4 := b.writeCmap()[12:]

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)  // version
	w.WriteUint16(2)  // numTables
	w.WriteUint16(1)  // platformID
	w.WriteUint16(0)  // encodingID
	w.WriteUint32(20) // offset
	w.WriteUint16(3)  // platformID
	w.WriteUint16(1)  // encodingID
	w.WriteUint32(20 + 262)
	w.WriteUint16(0)   // format
	w.WriteUint16(262) // length
	w.WriteUint16(0)   // language
	w.WriteBytes(make([]byte, 256))
	w.WriteBytes(format4)

	cmap, err := ParseCharacterMap(w.Bytes())
	test.Error(t, err)
	test.T(t, cmap.GlyphIndex('x'), uint16(3))
}

func TestCharacterMapErrors(t *testing.T) {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)  // version
	w.WriteUint16(1)  // numTables
	w.WriteUint16(3)  // platformID
	w.WriteUint16(10) // encodingID
	w.WriteUint32(12) // offset
	w.WriteUint16(12) // format
	w.WriteUint16(0)  // reserved
	w.WriteUint32(16) // length
	w.WriteUint32(0)  // language
	w.WriteUint32(0)  // numGroups
	_, err := ParseCharacterMap(w.Bytes())
	test.That(t, errors.Is(err, ErrMalformedGlyphData), err)
	test.T(t, err.Error(), "cmap: unsupported formats [12]: malformed glyph data")

	b := NewBuilder(1000)
	b.Map('A', 1)
	b.Map('B', 2)
	b.Map('Z', 3)

	cmap := b.writeCmap()
	binary.BigEndian.PutUint16(cmap[12+6:], 7) // segCountX2
	_, err = ParseCharacterMap(cmap)
	test.That(t, errors.Is(err, ErrMalformedGlyphData), err)

	cmap = b.writeCmap()
	binary.BigEndian.PutUint16(cmap[12+14+2:], 0x10) // endCode[1]
	_, err = ParseCharacterMap(cmap)
	test.That(t, errors.Is(err, ErrMalformedGlyphData), err)

	cmap = b.writeCmap()
	binary.BigEndian.PutUint16(cmap[12+14+3*2+2:], 'C') // startCode[0]
	_, err = ParseCharacterMap(cmap)
	test.That(t, errors.Is(err, ErrMalformedGlyphData), err)

	_, err = ParseCharacterMap(b.writeCmap()[:30])
	test.That(t, errors.Is(err, ErrUnexpectedEndOfData), err)

	_, err = ParseCharacterMap([]byte{0, 1, 0, 0})
	test.That(t, errors.Is(err, ErrMalformedGlyphData), err)
}
