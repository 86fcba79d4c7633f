// Package iobuf implements a bounds-checked cursor over a byte slice,
// used to decode wire payloads carried in message bodies without
// copying the underlying buffer.
package iobuf

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Reader is a forward-only cursor over a byte slice. It is not safe
// for concurrent use.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential, bounds-checked reads. data is
// not copied; callers must not mutate it while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Bytes returns the unread remainder of the buffer without advancing
// the cursor.
func (r *Reader) Bytes() []byte {
	return r.data[r.pos:]
}

// Read decodes a fixed-width value into out using little-endian byte
// order and reports whether enough bytes remained. out must be a
// pointer to a fixed-size type accepted by encoding/binary.Read. On
// failure the cursor is left unchanged.
func (r *Reader) Read(out interface{}) bool {
	n := binary.Size(out)
	if n < 0 || r.Len() < n {
		return false
	}
	if err := binary.Read(bytes.NewReader(r.data[r.pos:r.pos+n]), binary.LittleEndian, out); err != nil {
		return false
	}
	r.pos += n
	return true
}

// MustRead is Read, panicking when the buffer is exhausted.
func (r *Reader) MustRead(out interface{}) {
	if !r.Read(out) {
		panic(fmt.Errorf("iobuf: short read: need %d bytes, have %d", binary.Size(out), r.Len()))
	}
}

// ReadCString reads bytes up to and including a terminating 0x00 and
// returns the string without the terminator. It reports false, leaving
// the cursor unchanged, if no terminator is found.
func (r *Reader) ReadCString() (string, bool) {
	i := bytes.IndexByte(r.data[r.pos:], 0x00)
	if i < 0 {
		return "", false
	}
	s := string(r.data[r.pos : r.pos+i])
	r.pos += i + 1
	return s, true
}

// ReadLine reads up to and including a terminating "\r\n" and returns
// the line without the terminator. If no "\r\n" remains, it returns an
// empty, non-nil slice and leaves the cursor unchanged.
func (r *Reader) ReadLine() []byte {
	i := bytes.Index(r.data[r.pos:], []byte("\r\n"))
	if i < 0 {
		return []byte{}
	}
	line := r.data[r.pos : r.pos+i]
	r.pos += i + 2
	return line
}

// ReadDelim reads up to and including the first occurrence of delim
// and returns the bytes before it. If delim does not occur in the
// remaining buffer, it returns an empty, non-nil slice and leaves the
// cursor unchanged.
func (r *Reader) ReadDelim(delim byte) []byte {
	i := bytes.IndexByte(r.data[r.pos:], delim)
	if i < 0 {
		return []byte{}
	}
	chunk := r.data[r.pos : r.pos+i]
	r.pos += i + 1
	return chunk
}

// Skip advances the cursor by n bytes, or to the end of the buffer if
// n exceeds the number of bytes remaining.
func (r *Reader) Skip(n int) {
	if n > r.Len() {
		n = r.Len()
	}
	r.pos += n
}
