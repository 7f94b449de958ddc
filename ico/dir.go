package ico

// http://msdn.microsoft.com/en-us/library/ms997538.aspx

import (
	"bytes"
	"fmt"
	"math"

	rsrcbin "github.com/akavel/rsrc/binutil"
	rsrcico "github.com/akavel/rsrc/ico"

	"github.com/dentalwings/winicon/binutil"
)

const (
	sizeOfIconDir      = 6
	sizeOfIconDirEntry = 16
)

// ResourceType is the kind of file a collection is stored as.
type ResourceType uint16

const (
	Icon   ResourceType = 1 // .ico
	Cursor ResourceType = 2 // .cur, entries carry a hotspot
)

func (t ResourceType) String() string {
	switch t {
	case Icon:
		return "icon"
	case Cursor:
		return "cursor"
	}
	return fmt.Sprintf("ResourceType(%d)", uint16(t))
}

func (t ResourceType) valid() bool {
	return t == Icon || t == Cursor
}

// record is a directory entry together with the bytes it points at.
type record struct {
	rsrcico.ICONDIRENTRY
	data []byte
}

// A zero width or height byte stands for 256.
func dimension(b byte) int {
	if b == 0 {
		return maxDimension
	}
	return int(b)
}

func dimensionByte(n int) byte {
	if n >= maxDimension {
		return 0
	}
	return byte(n)
}

// parseDirectory reads the header and directory of an ICO or CUR file and
// slices out each entry's data. Payloads may appear in any order and need
// not be contiguous; only their bounds are checked.
func parseDirectory(data []byte) (ResourceType, []record, error) {
	r := binutil.Reader{B: data}
	var hdr rsrcico.ICONDIR
	r.ReadLE(&hdr)
	if r.Err != nil {
		return 0, nil, formatErrorf("truncated header (%d bytes)", len(data))
	}
	if hdr.Reserved != 0 {
		return 0, nil, formatErrorf("reserved header field is %d, must be 0", hdr.Reserved)
	}
	typ := ResourceType(hdr.Type)
	if !typ.valid() {
		return 0, nil, formatErrorf("unknown resource type %d", hdr.Type)
	}
	tableEnd := sizeOfIconDir + sizeOfIconDirEntry*int(hdr.Count)
	if len(data) < tableEnd {
		return 0, nil, formatErrorf("directory of %d entries needs %d bytes, have %d", hdr.Count, tableEnd, len(data))
	}

	records := make([]record, hdr.Count)
	for i := range records {
		rec := &records[i]
		r.ReadLE(&rec.ICONDIRENTRY)
		if r.Err != nil {
			return 0, nil, formatErrorf("entry %d: %v", i, r.Err)
		}
		if rec.Reserved != 0 {
			return 0, nil, formatErrorf("entry %d: reserved field is %d, must be 0", i, rec.Reserved)
		}
		start, size := uint64(rec.ImageOffset), uint64(rec.BytesInRes)
		if start < uint64(tableEnd) {
			return 0, nil, formatErrorf("entry %d: data offset %d overlaps the directory", i, start)
		}
		if start+size > uint64(len(data)) {
			return 0, nil, formatErrorf("entry %d: data at %d+%d extends beyond end of file (%d bytes)", i, start, size, len(data))
		}
		rec.data = data[start : start+size]
	}
	return typ, records, nil
}

// directoryEntry derives the on-disk record of e from its current state.
func directoryEntry(typ ResourceType, e *Entry, size, offset uint32) rsrcico.ICONDIRENTRY {
	common := rsrcico.IconDirEntryCommon{
		Width:      dimensionByte(e.width),
		Height:     dimensionByte(e.height),
		BytesInRes: size,
	}
	if n := e.ColorCount(); n < 256 {
		common.ColorCount = byte(n)
	}
	if h, ok := e.Hotspot(); ok && typ == Cursor {
		common.Planes, common.BitCount = h.X, h.Y
	} else {
		common.Planes = 1
		common.BitCount = uint16(e.Depth())
	}
	return rsrcico.ICONDIRENTRY{IconDirEntryCommon: common, ImageOffset: offset}
}

// writeDirectory lays out the header, one record per entry, and then the
// payloads back to back in entry order.
func writeDirectory(typ ResourceType, entries []*Entry) ([]byte, error) {
	if len(entries) > math.MaxUint16 {
		return nil, formatErrorf("%d entries do not fit a directory", len(entries))
	}
	payloads := make([][]byte, len(entries))
	tableEnd := sizeOfIconDir + sizeOfIconDirEntry*len(entries)
	total := uint64(tableEnd)
	for i, e := range entries {
		p, err := e.payload()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		payloads[i] = p
		total += uint64(len(p))
	}
	if total > math.MaxUint32 {
		return nil, formatErrorf("file size %d exceeds 32-bit offsets", total)
	}

	var buf bytes.Buffer
	buf.Grow(int(total))
	w := rsrcbin.Writer{W: &buf}
	w.WriteLE(rsrcico.ICONDIR{
		Reserved: 0,
		Type:     uint16(typ),
		Count:    uint16(len(entries)),
	})
	offset := uint32(tableEnd)
	for i, e := range entries {
		size := uint32(len(payloads[i]))
		w.WriteLE(directoryEntry(typ, e, size, offset))
		offset += size
	}
	for _, p := range payloads {
		w.WriteFromSized(bytes.NewReader(p))
	}
	if w.Err != nil {
		return nil, w.Err
	}
	if uint64(w.Offset) != total {
		return nil, fmt.Errorf("ico: wrote %d bytes, laid out %d", w.Offset, total)
	}
	return buf.Bytes(), nil
}
