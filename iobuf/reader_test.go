package iobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadFixedWidth(t *testing.T) {
	t.Run("reads a uint32 and advances the cursor", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x00, 0x00, 0x00, 0xAA})
		var v uint32
		assert.True(t, r.Read(&v))
		assert.Equal(t, uint32(1), v)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("fails without advancing when short", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x00})
		var v uint32
		assert.False(t, r.Read(&v))
		assert.Equal(t, 2, r.Len())
	})

	t.Run("MustRead panics on short buffer", func(t *testing.T) {
		r := NewReader([]byte{0x01})
		var v uint32
		assert.Panics(t, func() { r.MustRead(&v) })
	})
}

func TestReadCString(t *testing.T) {
	t.Run("reads up to the nul terminator", func(t *testing.T) {
		r := NewReader([]byte("hello\x00world"))
		s, ok := r.ReadCString()
		assert.True(t, ok)
		assert.Equal(t, "hello", s)
		assert.Equal(t, []byte("world"), r.Bytes())
	})

	t.Run("reports false when unterminated", func(t *testing.T) {
		r := NewReader([]byte("hello"))
		_, ok := r.ReadCString()
		assert.False(t, ok)
		assert.Equal(t, 5, r.Len())
	})
}

func TestReadLine(t *testing.T) {
	t.Run("reads up to the crlf", func(t *testing.T) {
		r := NewReader([]byte("GET /x\r\nbody"))
		line := r.ReadLine()
		assert.Equal(t, []byte("GET /x"), line)
		assert.Equal(t, []byte("body"), r.Bytes())
	})

	t.Run("returns empty non-nil slice without crlf", func(t *testing.T) {
		r := NewReader([]byte("no terminator"))
		line := r.ReadLine()
		assert.NotNil(t, line)
		assert.Len(t, line, 0)
		assert.Equal(t, 13, r.Len())
	})
}

func TestReadDelim(t *testing.T) {
	t.Run("reads up to the delimiter", func(t *testing.T) {
		r := NewReader([]byte("a,b,c"))
		assert.Equal(t, []byte("a"), r.ReadDelim(','))
		assert.Equal(t, []byte("b"), r.ReadDelim(','))
		assert.Equal(t, []byte("c"), r.Bytes())
	})

	t.Run("returns empty non-nil slice when absent", func(t *testing.T) {
		r := NewReader([]byte("noDelim"))
		chunk := r.ReadDelim(',')
		assert.NotNil(t, chunk)
		assert.Len(t, chunk, 0)
	})
}

func TestSkip(t *testing.T) {
	t.Run("advances by n", func(t *testing.T) {
		r := NewReader([]byte("abcdef"))
		r.Skip(2)
		assert.Equal(t, []byte("cdef"), r.Bytes())
	})

	t.Run("saturates at the end of the buffer", func(t *testing.T) {
		r := NewReader([]byte("abc"))
		r.Skip(100)
		assert.Equal(t, 0, r.Len())
	})
}
