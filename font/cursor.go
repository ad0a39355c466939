package font

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tdewolff/parse/v2"
)

// Tag is a 4-byte table identifier such as 'glyf', stored big-endian.
type Tag uint32

// MakeTag returns the tag for a 4-character string.
func MakeTag(s string) Tag {
	var b [4]byte
	copy(b[:], s)
	return Tag(binary.BigEndian.Uint32(b[:]))
}

func (tag Tag) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(tag))
	return string(b)
}

// Cursor is a sequential big-endian reader over a byte slice with absolute seeking. Reading past the end sets a sticky error wrapping ErrUnexpectedEndOfData, after which all reads return zero values.
type Cursor struct {
	r    *parse.BinaryReader
	size uint32
	pos  uint32 // only used when seeked past the end
	past bool
	err  error
}

// NewCursor returns a cursor at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{
		r:    parse.NewBinaryReaderBytes(b),
		size: uint32(len(b)),
	}
}

// Err returns the first error that occurred while reading.
func (c *Cursor) Err() error {
	return c.err
}

// Seek moves the cursor to an absolute position. The position is not checked, a subsequent read fails if it lies beyond the data.
func (c *Cursor) Seek(pos uint32) {
	if c.size < pos {
		c.pos, c.past = pos, true
		return
	}
	c.past = false
	if _, err := c.r.Seek(int64(pos), io.SeekStart); err != nil && c.err == nil {
		c.err = fmt.Errorf("seek to %d: %w", pos, ErrUnexpectedEndOfData)
	}
}

// Pos returns the current position.
func (c *Cursor) Pos() uint32 {
	if c.past {
		return c.pos
	}
	return uint32(c.r.Pos())
}

// Len returns the number of bytes left.
func (c *Cursor) Len() uint32 {
	if c.past {
		return 0
	}
	return uint32(c.r.Len())
}

func (c *Cursor) ensure(n uint32) bool {
	if c.err != nil {
		return false
	} else if c.past || c.r.Len() < int64(n) {
		c.err = fmt.Errorf("read %d bytes at %d: %w", n, c.Pos(), ErrUnexpectedEndOfData)
		return false
	}
	return true
}

// ReadBytes reads n bytes. The returned slice shares memory with the underlying data.
func (c *Cursor) ReadBytes(n uint32) []byte {
	if !c.ensure(n) {
		return nil
	} else if n == 0 {
		return []byte{}
	}
	return c.r.ReadBytes(int64(n))
}

// ReadUint8 reads a single byte.
func (c *Cursor) ReadUint8() uint8 {
	if !c.ensure(1) {
		return 0
	}
	return c.r.ReadUint8()
}

// ReadInt8 reads a signed byte.
func (c *Cursor) ReadInt8() int8 {
	return int8(c.ReadUint8())
}

// ReadUint16 reads a big-endian uint16.
func (c *Cursor) ReadUint16() uint16 {
	if !c.ensure(2) {
		return 0
	}
	return c.r.ReadUint16()
}

// ReadInt16 reads a big-endian int16.
func (c *Cursor) ReadInt16() int16 {
	return int16(c.ReadUint16())
}

// ReadUint32 reads a big-endian uint32.
func (c *Cursor) ReadUint32() uint32 {
	if !c.ensure(4) {
		return 0
	}
	return c.r.ReadUint32()
}

// ReadInt32 reads a big-endian int32.
func (c *Cursor) ReadInt32() int32 {
	return int32(c.ReadUint32())
}

// ReadUint64 reads a big-endian uint64.
func (c *Cursor) ReadUint64() uint64 {
	if !c.ensure(8) {
		return 0
	}
	return c.r.ReadUint64()
}

// ReadInt64 reads a big-endian int64.
func (c *Cursor) ReadInt64() int64 {
	return int64(c.ReadUint64())
}

// ReadFloat32 reads an IEEE-754 single precision float in the byte order of the host.
func (c *Cursor) ReadFloat32() float32 {
	b := c.ReadBytes(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.NativeEndian.Uint32(b))
}

// ReadTag reads a 4-byte tag.
func (c *Cursor) ReadTag() Tag {
	return Tag(c.ReadUint32())
}

////////////////////////////////////////////////////////////////

// F2Dot14 is a signed 2.14 fixed-point number as used by compound glyph transforms.
type F2Dot14 int16

// Float64 returns the value as a float.
func (f F2Dot14) Float64() float64 {
	return float64(f) / (1 << 14)
}

func (f F2Dot14) String() string {
	return fmt.Sprintf("%g", f.Float64())
}
