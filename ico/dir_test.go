package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// header builds an ICONDIR.
func header(typ, count uint16) []byte {
	b := make([]byte, sizeOfIconDir)
	binary.LittleEndian.PutUint16(b[2:], typ)
	binary.LittleEndian.PutUint16(b[4:], count)
	return b
}

// dirRecord builds a 16-byte directory record.
func dirRecord(width, height, colors byte, planes, bitCount uint16, size, offset uint32) []byte {
	b := make([]byte, sizeOfIconDirEntry)
	b[0], b[1], b[2] = width, height, colors
	binary.LittleEndian.PutUint16(b[4:], planes)
	binary.LittleEndian.PutUint16(b[6:], bitCount)
	binary.LittleEndian.PutUint32(b[8:], size)
	binary.LittleEndian.PutUint32(b[12:], offset)
	return b
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestParseDirectoryErrors(t *testing.T) {
	tests := []struct {
		comment string
		data    []byte
	}{
		{comment: "empty input", data: nil},
		{comment: "short header", data: []byte{0, 0, 1, 0, 0}},
		{comment: "reserved header field", data: []byte{1, 0, 1, 0, 0, 0}},
		{comment: "type 0", data: header(0, 0)},
		{comment: "type 3", data: header(3, 0)},
		{comment: "record table past end", data: concat(header(1, 5), make([]byte, 16*4))},
		{comment: "record reserved byte", data: func() []byte {
			r := dirRecord(1, 1, 0, 1, 32, 4, 22)
			r[3] = 1
			return concat(header(1, 1), r, make([]byte, 4))
		}()},
		{comment: "offset inside header", data: concat(header(1, 1), dirRecord(1, 1, 0, 1, 32, 4, 2), make([]byte, 4))},
		{comment: "offset inside record table", data: concat(header(1, 1), dirRecord(1, 1, 0, 1, 32, 4, 21), make([]byte, 4))},
		{comment: "payload past end", data: concat(header(1, 1), dirRecord(1, 1, 0, 1, 32, 5, 22), make([]byte, 4))},
		{comment: "offset past end", data: concat(header(1, 1), dirRecord(1, 1, 0, 1, 32, 0, 100))},
		{comment: "size overflows 32 bits", data: concat(header(1, 1), dirRecord(1, 1, 0, 1, 32, 0xffffffff, 22), make([]byte, 4))},
	}
	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			_, _, err := parseDirectory(tt.data)
			var fe FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("got %v, want FormatError", err)
			}
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	tests := []struct {
		comment string
		typ     ResourceType
		data    []byte
	}{
		{comment: "icon", typ: Icon, data: []byte("\x00\x00\x01\x00\x00\x00")},
		{comment: "cursor", typ: Cursor, data: []byte("\x00\x00\x02\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			c, err := Decode(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if c.Type() != tt.typ || c.Len() != 0 {
				t.Fatalf("decoded %v with %d entries, want empty %v", c.Type(), c.Len(), tt.typ)
			}
			out, err := New(tt.typ).Encode()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(out, tt.data) {
				t.Fatalf("encoded % x, want % x", out, tt.data)
			}
		})
	}
}

func TestDimensionByte(t *testing.T) {
	tests := []struct {
		n int
		b byte
	}{
		{1, 1},
		{16, 16},
		{255, 255},
		{256, 0},
	}
	for _, tt := range tests {
		if got := dimensionByte(tt.n); got != tt.b {
			t.Errorf("dimensionByte(%d) = %d, want %d", tt.n, got, tt.b)
		}
		if got := dimension(tt.b); got != tt.n {
			t.Errorf("dimension(%d) = %d, want %d", tt.b, got, tt.n)
		}
	}
}

func TestParseNonContiguousPayloads(t *testing.T) {
	a, err := encodeDIB(pixels(red), 1, 1, Depth24)
	if err != nil {
		t.Fatal(err)
	}
	b, err := encodeDIB(pixels(blue, green), 2, 1, Depth32)
	if err != nil {
		t.Fatal(err)
	}
	// The second entry's data comes first, with a gap before each payload.
	const gap = 3
	tableEnd := sizeOfIconDir + 2*sizeOfIconDirEntry
	offB := tableEnd + gap
	offA := offB + len(b) + gap
	data := concat(
		header(1, 2),
		dirRecord(1, 1, 0, 1, 24, uint32(len(a)), uint32(offA)),
		dirRecord(2, 1, 0, 1, 32, uint32(len(b)), uint32(offB)),
		make([]byte, gap), b,
		make([]byte, gap), a,
	)
	c, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("got %d entries, want 2", c.Len())
	}
	if got := c.At(0).RGBA(); !bytes.Equal(got, pixels(red)) {
		t.Errorf("entry 0 = %x", got)
	}
	if got := c.At(1).RGBA(); !bytes.Equal(got, pixels(blue, green)) {
		t.Errorf("entry 1 = %x", got)
	}
}

func TestWriteDirectoryLayout(t *testing.T) {
	small, err := NewBMPEntry(2, 2, pixels(red, green, green, red), Depth1, nil)
	if err != nil {
		t.Fatal(err)
	}
	big, err := NewBMPEntry(3, 1, pixels(red, green, blue), Depth4, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := writeDirectory(Icon, []*Entry{small, big})
	if err != nil {
		t.Fatal(err)
	}
	_, records, err := parseDirectory(data)
	if err != nil {
		t.Fatal(err)
	}
	sizes := []int{dibSize(2, 2, Depth1), dibSize(3, 1, Depth4)}
	offset := uint32(sizeOfIconDir + 2*sizeOfIconDirEntry)
	for i, r := range records {
		if r.ImageOffset != offset || int(r.BytesInRes) != sizes[i] {
			t.Errorf("record %d at %d+%d, want %d+%d", i, r.ImageOffset, r.BytesInRes, offset, sizes[i])
		}
		offset += uint32(sizes[i])
	}
	if int(offset) != len(data) {
		t.Errorf("payloads end at %d, file is %d bytes", offset, len(data))
	}
	if records[0].ColorCount != 2 || records[1].ColorCount != 16 {
		t.Errorf("colour counts %d, %d", records[0].ColorCount, records[1].ColorCount)
	}
	if records[1].Planes != 1 || records[1].BitCount != 4 {
		t.Errorf("planes %d, bit count %d", records[1].Planes, records[1].BitCount)
	}
}
