package bytecursor

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16le(s string) []byte {
	var b []byte
	for _, r := range s {
		b = append(b, byte(r), byte(r>>8))
	}
	return b
}

func TestRandomAccessReads(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	c := New(buf)

	v16, err := c.U16At(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v16)

	v32, err := c.U32At(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x05040302), v32)

	v64, err := c.U64At(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0908070605040302), v64)

	rem, err := c.RemainingFrom(9)
	require.NoError(t, err)
	assert.Equal(t, 0, rem)
}

func TestOutOfBounds(t *testing.T) {
	c := New(make([]byte, 4))

	tests := []struct {
		name string
		read func() error
	}{
		{"u16 at end", func() error { _, err := c.U16At(3); return err }},
		{"u32 past end", func() error { _, err := c.U32At(1); return err }},
		{"u64 larger than buffer", func() error { _, err := c.U64At(0); return err }},
		{"negative offset", func() error { _, err := c.BytesAt(-1, 1); return err }},
		{"negative length", func() error { _, err := c.BytesAt(0, -1); return err }},
		{"huge length", func() error { _, err := c.BytesAt(2, int(^uint(0)>>1)); return err }},
		{"remaining past end", func() error { _, err := c.RemainingFrom(5); return err }},
		{"utf16 past end", func() error { _, err := c.UTF16At(2, 4); return err }},
		{"seek past end", func() error { return c.Seek(5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, diag.ErrOutOfBounds))
			var be *BoundsError
			assert.True(t, errors.As(err, &be))
		})
	}
}

func TestBytesAtReturnsCopy(t *testing.T) {
	buf := []byte{1, 2, 3}
	c := New(buf)
	b, err := c.BytesAt(0, 3)
	require.NoError(t, err)
	b[0] = 9
	assert.Equal(t, byte(1), buf[0])
}

func TestSequentialReads(t *testing.T) {
	buf := append([]byte{0x03, 0x00}, utf16le("ab\x00")...)
	buf = append(buf, 0xEF, 0xBE, 0xAD, 0xDE)
	c := New(buf)

	n, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(3), n)

	s, err := c.ReadUTF16(int(n) * 2)
	require.NoError(t, err)
	assert.Equal(t, "ab", s)

	v, err := c.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)
	assert.Equal(t, c.Len(), c.Pos())

	_, err = c.ReadU16()
	assert.True(t, errors.Is(err, diag.ErrOutOfBounds))
	assert.Equal(t, c.Len(), c.Pos(), "failed read must not advance")
}

func TestUTF16UnpairedSurrogate(t *testing.T) {
	// "a", lone high surrogate, "b"
	buf := []byte{'a', 0, 0x00, 0xD8, 'b', 0}
	s, err := New(buf).UTF16At(0, len(buf))
	require.NoError(t, err)
	assert.Equal(t, "a�b", s)
}

func TestUTF16SurrogatePair(t *testing.T) {
	// U+1F600 encoded as D83D DE00
	buf := []byte{0x3D, 0xD8, 0x00, 0xDE}
	s, err := New(buf).UTF16At(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "\U0001F600", s)
}

func TestSub(t *testing.T) {
	c := New([]byte{0, 1, 2, 3, 4, 5})
	sub, err := c.Sub(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Len())

	v, err := sub.U16At(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), v)

	_, err = sub.U16At(2)
	assert.True(t, errors.Is(err, diag.ErrOutOfBounds))

	_, err = c.Sub(4, 3)
	assert.True(t, errors.Is(err, diag.ErrOutOfBounds))
}
