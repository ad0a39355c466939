package font

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// PlatformID is the platform of a name record.
type PlatformID uint16

// see PlatformID
const (
	PlatformUnicode   PlatformID = 0
	PlatformMacintosh PlatformID = 1
	PlatformWindows   PlatformID = 3
)

// NameID identifies the string of a name record.
type NameID uint16

// see NameID
const (
	NameCopyrightNotice      NameID = 0
	NameFontFamily           NameID = 1
	NameFontSubfamily        NameID = 2
	NameUniqueIdentifier     NameID = 3
	NameFull                 NameID = 4
	NameVersion              NameID = 5
	NamePostScript           NameID = 6
	NameTypographicFamily    NameID = 16
	NameTypographicSubfamily NameID = 17
)

// NameRecord is a single string of the name table.
type NameRecord struct {
	Platform PlatformID
	Encoding uint16
	Language uint16
	Name     NameID
	Value    []byte
}

// String decodes the value as UTF-16BE for Unicode and Windows platforms and as Mac Roman for the Macintosh platform.
func (record NameRecord) String() string {
	var decoder *encoding.Decoder
	if record.Platform == PlatformUnicode || record.Platform == PlatformWindows {
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	} else if record.Platform == PlatformMacintosh && record.Encoding == 0 {
		decoder = charmap.Macintosh.NewDecoder()
	} else {
		return string(record.Value)
	}
	s, _, err := transform.String(decoder, string(record.Value))
	if err != nil {
		return string(record.Value)
	}
	return s
}

// NameTable holds the naming table.
type NameTable struct {
	Records []NameRecord
}

// Get returns the first string for the given name ID, preferring the Windows platform.
func (t *NameTable) Get(name NameID) (string, bool) {
	var found *NameRecord
	for i, record := range t.Records {
		if record.Name != name || len(record.Value) == 0 {
			continue
		} else if record.Platform == PlatformWindows {
			return record.String(), true
		} else if found == nil {
			found = &t.Records[i]
		}
	}
	if found == nil {
		return "", false
	}
	return found.String(), true
}

func parseName(b []byte) (*NameTable, error) {
	c := NewCursor(b)
	version := c.ReadUint16()
	count := c.ReadUint16()
	storageOffset := uint32(c.ReadUint16())
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	} else if version != 0 && version != 1 {
		return nil, fmt.Errorf("name: bad version %d: %w", version, ErrMalformedGlyphData)
	}

	name := &NameTable{
		Records: make([]NameRecord, 0, count),
	}
	for i := 0; i < int(count); i++ {
		record := NameRecord{}
		record.Platform = PlatformID(c.ReadUint16())
		record.Encoding = c.ReadUint16()
		record.Language = c.ReadUint16()
		record.Name = NameID(c.ReadUint16())
		length := uint32(c.ReadUint16())
		offset := uint32(c.ReadUint16())
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		} else if uint32(len(b)) < storageOffset+offset+length {
			return nil, fmt.Errorf("name: bad string for record %d: %w", i, ErrUnexpectedEndOfData)
		}
		record.Value = b[storageOffset+offset : storageOffset+offset+length]
		name.Records = append(name.Records, record)
	}
	return name, nil
}
