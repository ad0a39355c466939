package font

import "errors"

// Errors returned while parsing a font. They are wrapped with the table and glyph that caused them, use errors.Is to test for them.
var (
	// ErrUnexpectedEndOfData is returned when a read goes past the end of the font data or of a table.
	ErrUnexpectedEndOfData = errors.New("unexpected end of data")

	// ErrMissingRequiredTable is returned when one of head, maxp, loca, glyf, cmap, hhea, or hmtx is absent.
	ErrMissingRequiredTable = errors.New("missing required table")

	// ErrMalformedGlyphData is returned for structural inconsistencies, such as counts exceeding the maxp maxima or an unsupported cmap format.
	ErrMalformedGlyphData = errors.New("malformed glyph data")
)
