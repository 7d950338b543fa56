// Package bytecursor provides bounds-checked little-endian reads over an
// immutable byte buffer.
//
// Every read validates off+n <= len(buf) before touching the buffer and
// reports a *BoundsError otherwise. Decoders treat the buffer as an arena
// and pass around integer offsets; nothing outside this package indexes
// the raw bytes.
package bytecursor

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"golang.org/x/text/encoding/unicode"
)

// BoundsError describes a read that would cross the end of the buffer.
// It matches diag.ErrOutOfBounds with errors.Is.
type BoundsError struct {
	Offset int
	Length int
	Size   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds buffer of %d bytes", e.Length, e.Offset, e.Size)
}

func (e *BoundsError) Unwrap() error { return diag.ErrOutOfBounds }

// Cursor is a read-only view over a byte buffer with a current position.
// The zero value is an empty cursor.
type Cursor struct {
	buf []byte
	pos int
}

// New wraps buf. The cursor never writes to buf; callers must not
// modify it while the cursor is in use.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Pos returns the current sequential read position.
func (c *Cursor) Pos() int { return c.pos }

// Seek moves the sequential position to off. Seeking to Len() is allowed.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return &BoundsError{Offset: off, Length: 0, Size: len(c.buf)}
	}
	c.pos = off
	return nil
}

// Check reports whether n bytes starting at off lie inside the buffer.
func (c *Cursor) Check(off, n int) error {
	if off < 0 || n < 0 || off > len(c.buf) || n > len(c.buf)-off {
		return &BoundsError{Offset: off, Length: n, Size: len(c.buf)}
	}
	return nil
}

// RemainingFrom returns the number of bytes between off and the end.
func (c *Cursor) RemainingFrom(off int) (int, error) {
	if err := c.Check(off, 0); err != nil {
		return 0, err
	}
	return len(c.buf) - off, nil
}

// U16At reads a little-endian uint16 at off.
func (c *Cursor) U16At(off int) (uint16, error) {
	if err := c.Check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(c.buf[off:]), nil
}

// U32At reads a little-endian uint32 at off.
func (c *Cursor) U32At(off int) (uint32, error) {
	if err := c.Check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.buf[off:]), nil
}

// U64At reads a little-endian uint64 at off.
func (c *Cursor) U64At(off int) (uint64, error) {
	if err := c.Check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(c.buf[off:]), nil
}

// BytesAt returns a copy of n bytes at off.
func (c *Cursor) BytesAt(off, n int) ([]byte, error) {
	if err := c.Check(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[off:off+n])
	return out, nil
}

// UTF16At decodes byteLen bytes at off as UTF-16LE text. Unpaired
// surrogates are replaced with U+FFFD and trailing NUL terminators are
// dropped. An odd byteLen leaves the final byte to the decoder, which
// also renders it as U+FFFD.
func (c *Cursor) UTF16At(off, byteLen int) (string, error) {
	if err := c.Check(off, byteLen); err != nil {
		return "", err
	}
	return DecodeUTF16LE(c.buf[off : off+byteLen]), nil
}

// Sub returns a cursor over n bytes at off. Offsets in the returned
// cursor are relative to off.
func (c *Cursor) Sub(off, n int) (*Cursor, error) {
	if err := c.Check(off, n); err != nil {
		return nil, err
	}
	return &Cursor{buf: c.buf[off : off+n : off+n]}, nil
}

// ReadU16 reads a uint16 at the current position and advances past it.
func (c *Cursor) ReadU16() (uint16, error) {
	v, err := c.U16At(c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 2
	return v, nil
}

// ReadU32 reads a uint32 at the current position and advances past it.
func (c *Cursor) ReadU32() (uint32, error) {
	v, err := c.U32At(c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 4
	return v, nil
}

// ReadBytes copies n bytes at the current position and advances past them.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.BytesAt(c.pos, n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// ReadUTF16 decodes byteLen bytes of UTF-16LE at the current position and
// advances past them.
func (c *Cursor) ReadUTF16(byteLen int) (string, error) {
	s, err := c.UTF16At(c.pos, byteLen)
	if err != nil {
		return "", err
	}
	c.pos += byteLen
	return s, nil
}

// DecodeUTF16LE converts UTF-16LE bytes to UTF-8, replacing invalid
// sequences with U+FFFD and trimming trailing NULs.
func DecodeUTF16LE(b []byte) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		// unreachable: the decoder substitutes U+FFFD
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}
