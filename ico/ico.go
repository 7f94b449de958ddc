// Package ico reads and writes Windows icon (.ico) and cursor (.cur) files.
//
// A file is a Collection of entries, each holding one image stored either
// as a PNG stream or as a device-independent bitmap at 1, 4, 8, 24 or 32
// bits per pixel.
//
// A Collection is not safe for concurrent use; separate collections share
// no state.
package ico

// http://msdn.microsoft.com/en-us/library/ms997538.aspx

import (
	"io"
	"math"
)

// Collection is the contents of one ICO or CUR file: a file kind and an
// ordered list of entries.
type Collection struct {
	typ     ResourceType
	entries []*Entry
}

// New returns an empty collection of the given kind.
func New(typ ResourceType) *Collection {
	return &Collection{typ: typ}
}

func (c *Collection) Type() ResourceType { return c.typ }
func (c *Collection) Len() int           { return len(c.entries) }
func (c *Collection) At(i int) *Entry    { return c.entries[i] }

// Entries returns the entries in file order. The slice is a copy.
func (c *Collection) Entries() []*Entry {
	return append([]*Entry(nil), c.entries...)
}

// Add appends e. Icon entries must have no hotspot and cursor entries must
// have one.
func (c *Collection) Add(e *Entry) error {
	if e == nil {
		return InvalidEntryError("nil entry")
	}
	if err := checkDimensions(e.width, e.height); err != nil {
		return err
	}
	switch _, ok := e.Hotspot(); {
	case !c.typ.valid():
		return invalidEntryf("collection has unknown resource type %d", uint16(c.typ))
	case c.typ == Icon && ok:
		return InvalidEntryError("icon entries cannot have a hotspot")
	case c.typ == Cursor && !ok:
		return InvalidEntryError("cursor entries need a hotspot")
	}
	if len(c.entries) >= math.MaxUint16 {
		return invalidEntryf("collection already holds %d entries", len(c.entries))
	}
	c.entries = append(c.entries, e)
	return nil
}

// Remove deletes the entry at index i, keeping the order of the others.
func (c *Collection) Remove(i int) error {
	if i < 0 || i >= len(c.entries) {
		return invalidEntryf("index %d out of range [0,%d)", i, len(c.entries))
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return nil
}

// Swap exchanges the entries at i and j.
func (c *Collection) Swap(i, j int) error {
	n := len(c.entries)
	if i < 0 || i >= n || j < 0 || j >= n {
		return invalidEntryf("indices %d, %d out of range [0,%d)", i, j, n)
	}
	c.entries[i], c.entries[j] = c.entries[j], c.entries[i]
	return nil
}

// Encode serializes the collection. Every directory field is computed from
// the entries as they are now; identical collections encode to identical
// bytes.
func (c *Collection) Encode() ([]byte, error) {
	if !c.typ.valid() {
		return nil, formatErrorf("unknown resource type %d", uint16(c.typ))
	}
	return writeDirectory(c.typ, c.entries)
}

// WriteTo writes the encoded collection to w.
func (c *Collection) WriteTo(w io.Writer) (int64, error) {
	b, err := c.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Decode parses an ICO or CUR file held in memory.
func Decode(data []byte) (*Collection, error) {
	var d Decoder
	return d.Decode(data)
}

// Read reads an ICO or CUR file from r, up to DefaultMaxSize bytes.
func Read(r io.Reader) (*Collection, error) {
	var d Decoder
	return d.Read(r)
}
