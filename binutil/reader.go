package binutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Reader consumes little-endian values from an in-memory buffer. The first
// failure is kept in Err and every later call becomes a no-op, mirroring
// rsrc's binutil.Writer.
type Reader struct {
	B      []byte
	Offset int
	Err    error
}

// Next returns the next n bytes, or nil if fewer remain.
func (r *Reader) Next(n int) []byte {
	if r.Err != nil {
		return nil
	}
	if n < 0 || n > len(r.B)-r.Offset {
		r.Err = fmt.Errorf("short buffer: need %d bytes at offset %d, have %d", n, r.Offset, len(r.B)-r.Offset)
		return nil
	}
	b := r.B[r.Offset : r.Offset+n]
	r.Offset += n
	return b
}

func (r *Reader) ReadLE(v interface{}) {
	n := binary.Size(v)
	if n < 0 {
		if r.Err == nil {
			r.Err = fmt.Errorf("cannot decode %T", v)
		}
		return
	}
	b := r.Next(n)
	if r.Err != nil {
		return
	}
	r.Err = binary.Read(bytes.NewReader(b), binary.LittleEndian, v)
}

func (r *Reader) Skip(n int) {
	r.Next(n)
}

// Len is the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.B) - r.Offset
}
