package font

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
)

// TableRecord is an entry of the table directory.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// TableDirectory lists the tables of a font sorted by tag.
type TableDirectory struct {
	SFNTVersion uint32
	Records     []TableRecord
}

// Find returns the table record for a tag.
func (dir TableDirectory) Find(tag Tag) (TableRecord, bool) {
	i := sort.Search(len(dir.Records), func(i int) bool { return tag <= dir.Records[i].Tag })
	if i < len(dir.Records) && dir.Records[i].Tag == tag {
		return dir.Records[i], true
	}
	return TableRecord{}, false
}

// Table returns the data of a table, or ErrMissingRequiredTable if it is absent.
func (dir TableDirectory) Table(b []byte, tag Tag) ([]byte, error) {
	record, ok := dir.Find(tag)
	if !ok {
		return nil, fmt.Errorf("%v: %w", tag, ErrMissingRequiredTable)
	}
	return b[record.Offset : record.Offset+record.Length : record.Offset+record.Length], nil
}

// ReadTableDirectory reads the offset subtable and table records from the start of a font file.
func ReadTableDirectory(b []byte) (TableDirectory, error) {
	dir := TableDirectory{}
	c := NewCursor(b)
	dir.SFNTVersion = c.ReadUint32()
	numTables := c.ReadUint16()
	_ = c.ReadUint16() // searchRange
	_ = c.ReadUint16() // entrySelector
	_ = c.ReadUint16() // rangeShift
	if err := c.Err(); err != nil {
		return dir, fmt.Errorf("bad table directory: %w", err)
	} else if dir.SFNTVersion != 0x00010000 && Tag(dir.SFNTVersion) != MakeTag("true") {
		return dir, fmt.Errorf("bad SFNT version 0x%08X: %w", dir.SFNTVersion, ErrMalformedGlyphData)
	}

	dir.Records = make([]TableRecord, numTables)
	for i := 0; i < int(numTables); i++ {
		record := TableRecord{}
		record.Tag = c.ReadTag()
		record.Checksum = c.ReadUint32()
		record.Offset = c.ReadUint32()
		record.Length = c.ReadUint32()
		if err := c.Err(); err != nil {
			return dir, fmt.Errorf("bad table record %d: %w", i, err)
		} else if uint32(len(b)) < record.Offset || uint32(len(b))-record.Offset < record.Length {
			return dir, fmt.Errorf("%v: table exceeds file: %w", record.Tag, ErrUnexpectedEndOfData)
		}
		dir.Records[i] = record
	}
	sort.Slice(dir.Records, func(i, j int) bool { return dir.Records[i].Tag < dir.Records[j].Tag })
	for i := 1; i < len(dir.Records); i++ {
		if dir.Records[i].Tag == dir.Records[i-1].Tag {
			return dir, fmt.Errorf("%v: duplicate table: %w", dir.Records[i].Tag, ErrMalformedGlyphData)
		}
	}
	return dir, nil
}

func calcChecksum(b []byte) uint32 {
	var sum uint32
	for ; 4 <= len(b); b = b[4:] {
		sum += binary.BigEndian.Uint32(b)
	}
	if 0 < len(b) {
		var pad [4]byte
		copy(pad[:], b)
		sum += binary.BigEndian.Uint32(pad[:])
	}
	return sum
}

// VerifyChecksum returns true if the table's checksum matches its data. The head table is summed with its checksumAdjustment field set to zero.
func (record TableRecord) VerifyChecksum(b []byte) bool {
	data := b[record.Offset : record.Offset+record.Length]
	checksum := calcChecksum(data)
	if record.Tag == MakeTag("head") && 12 <= len(data) {
		checksum -= binary.BigEndian.Uint32(data[8:])
	}
	return checksum == record.Checksum
}

////////////////////////////////////////////////////////////////

var requiredTables = []string{"head", "maxp", "loca", "glyf", "cmap", "hhea", "hmtx"}

// Font is a parsed TrueType font. It is immutable after parsing and safe for concurrent use.
type Font struct {
	Data      []byte
	Directory TableDirectory
	Head      *HeadTable
	Maxp      *MaxpTable
	Hhea      *HheaTable
	Hmtx      *HmtxTable
	Cmap      *CharacterMap
	Name      *NameTable // can be nil

	glyphs []GlyphOutline
}

// LoadFont reads and parses a TrueType font file.
func LoadFont(filename string) (*Font, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	font, err := ParseFont(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return font, nil
}

// ParseFont parses a TrueType font. All glyph outlines are decoded up front.
func ParseFont(b []byte) (*Font, error) {
	dir, err := ReadTableDirectory(b)
	if err != nil {
		return nil, err
	}

	tables := map[string][]byte{}
	for _, tag := range requiredTables {
		if tables[tag], err = dir.Table(b, MakeTag(tag)); err != nil {
			return nil, err
		}
	}

	font := &Font{
		Data:      b,
		Directory: dir,
	}
	if font.Head, err = parseHead(tables["head"]); err != nil {
		return nil, err
	} else if font.Maxp, err = parseMaxp(tables["maxp"]); err != nil {
		return nil, err
	} else if font.Hhea, err = parseHhea(tables["hhea"], font.Maxp.NumGlyphs); err != nil {
		return nil, err
	} else if font.Hmtx, err = parseHmtx(tables["hmtx"], font.Maxp.NumGlyphs, font.Hhea.NumberOfHMetrics); err != nil {
		return nil, err
	} else if font.Cmap, err = ParseCharacterMap(tables["cmap"]); err != nil {
		return nil, err
	}
	if _, ok := dir.Find(MakeTag("name")); ok {
		nameTable, _ := dir.Table(b, MakeTag("name"))
		if font.Name, err = parseName(nameTable); err != nil {
			Logger().Warn("ignored name table", "err", err)
			font.Name = nil
		}
	}

	loca, err := parseLoca(tables["loca"], font.Head.IndexToLocFormat, font.Maxp.NumGlyphs, uint32(len(tables["glyf"])))
	if err != nil {
		return nil, err
	}
	glyphs := newGlyphReader(tables["glyf"], loca, font.Maxp)
	font.glyphs = make([]GlyphOutline, font.Maxp.NumGlyphs)
	for glyphID := range font.glyphs {
		if glyphs.Empty(uint16(glyphID)) {
			font.glyphs[glyphID] = GlyphOutline{GlyphID: uint16(glyphID)}
			continue
		}
		if font.glyphs[glyphID], err = glyphs.Read(uint16(glyphID), 0); err != nil {
			return nil, err
		}
	}

	Logger().Debug("font loaded", "tables", len(dir.Records), "glyphs", font.Maxp.NumGlyphs, "unitsPerEm", font.Head.UnitsPerEm)
	return font, nil
}

// NumGlyphs returns the number of glyphs.
func (font *Font) NumGlyphs() uint16 {
	return font.Maxp.NumGlyphs
}

// UnitsPerEm returns the number of font units per em.
func (font *Font) UnitsPerEm() uint16 {
	return font.Head.UnitsPerEm
}

// FamilyName returns the font family name, or an empty string if the font has no name table.
func (font *Font) FamilyName() string {
	if font.Name == nil {
		return ""
	} else if name, ok := font.Name.Get(NameTypographicFamily); ok {
		return name
	}
	name, _ := font.Name.Get(NameFontFamily)
	return name
}

// GlyphIndexFor returns the glyph index for a code point, or 0 if the font has no glyph for it.
func (font *Font) GlyphIndexFor(r rune) uint16 {
	glyphID := font.Cmap.GlyphIndex(r)
	if font.Maxp.NumGlyphs <= glyphID {
		return 0
	}
	return glyphID
}

// AdvanceWidth returns the advance width of a glyph in font units.
func (font *Font) AdvanceWidth(glyphID uint16) uint16 {
	return font.Hmtx.AdvanceWidth(glyphID)
}

// AdvanceWidthFor returns the advance width of the glyph for a code point in font units.
func (font *Font) AdvanceWidthFor(r rune) uint16 {
	return font.Hmtx.AdvanceWidth(font.GlyphIndexFor(r))
}

// Outline returns the outline of a glyph.
func (font *Font) Outline(glyphID uint16) (GlyphOutline, error) {
	if font.Maxp.NumGlyphs <= glyphID {
		return GlyphOutline{}, fmt.Errorf("glyf: bad glyphID %v: %w", glyphID, ErrMalformedGlyphData)
	}
	return font.glyphs[glyphID], nil
}

// OutlineFor returns the outline of the glyph for a code point.
func (font *Font) OutlineFor(r rune) GlyphOutline {
	return font.glyphs[font.GlyphIndexFor(r)]
}
