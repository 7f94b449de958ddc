package ico

import "fmt"

// Size limits for images in an ICO or CUR file.
const (
	minDimension = 1
	maxDimension = 256
)

// Format tells how the image of an entry is stored on disk.
type Format int

const (
	FormatBMP Format = iota // device-independent bitmap with AND mask
	FormatPNG               // complete PNG stream
)

func (f Format) String() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatPNG:
		return "png"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Hotspot is the active point of a cursor, in pixels right of the left edge
// and down from the top edge.
type Hotspot struct {
	X, Y uint16
}

// Entry is one image of an icon or cursor file. An Entry never changes once
// built; accessors hand out copies.
type Entry struct {
	width, height int
	hotspot       *Hotspot
	format        Format

	depth Depth  // FormatBMP
	rgba  []byte // FormatBMP, 4*width*height bytes, top-down
	png   []byte // FormatPNG
}

func checkDimensions(width, height int) error {
	if width < minDimension || width > maxDimension {
		return invalidEntryf("width %d out of range [%d,%d]", width, minDimension, maxDimension)
	}
	if height < minDimension || height > maxDimension {
		return invalidEntryf("height %d out of range [%d,%d]", height, minDimension, maxDimension)
	}
	return nil
}

func copyHotspot(h *Hotspot) *Hotspot {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

// NewBMPEntry builds an entry stored as a bitmap of the given depth. rgba
// holds width*height non-premultiplied RGBA pixels in rows from top to
// bottom. Depths of 8 or less need the image to fit their palette. Alpha is
// reduced to on/off below 32 bits: values under 128 become fully
// transparent.
//
// Pass a hotspot for entries meant for a cursor, nil for an icon.
func NewBMPEntry(width, height int, rgba []byte, depth Depth, hotspot *Hotspot) (*Entry, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if len(rgba) != 4*width*height {
		return nil, invalidEntryf("pixel buffer holds %d bytes, want %d for %dx%d", len(rgba), 4*width*height, width, height)
	}
	if !depth.Valid() {
		return nil, UnsupportedDepthError(depth)
	}
	if n := depth.PaletteSize(); n > 0 && countColors(rgba, n) > n {
		return nil, invalidEntryf("image has more colours than a %d-bit palette holds (%d)", depth, n)
	}
	return &Entry{
		width:   width,
		height:  height,
		hotspot: copyHotspot(hotspot),
		format:  FormatBMP,
		depth:   depth,
		rgba:    append([]byte(nil), rgba...),
	}, nil
}

// NewPNGEntry builds an entry stored as the given PNG stream. Only the
// signature and header are checked; the bytes are written out unchanged.
func NewPNGEntry(data []byte, hotspot *Hotspot) (*Entry, error) {
	width, height, err := pngSize(data)
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	return &Entry{
		width:   width,
		height:  height,
		hotspot: copyHotspot(hotspot),
		format:  FormatPNG,
		png:     append([]byte(nil), data...),
	}, nil
}

// WithHotspot returns a copy of e with its hotspot replaced; nil removes it.
func (e *Entry) WithHotspot(h *Hotspot) *Entry {
	c := *e
	c.hotspot = copyHotspot(h)
	return &c
}

func (e *Entry) Width() int     { return e.width }
func (e *Entry) Height() int    { return e.height }
func (e *Entry) Format() Format { return e.format }

// Depth is the bit depth of a BMP entry, 0 for PNG.
func (e *Entry) Depth() Depth {
	if e.format != FormatBMP {
		return 0
	}
	return e.depth
}

// Hotspot returns the cursor hotspot; ok is false for icon entries.
func (e *Entry) Hotspot() (h Hotspot, ok bool) {
	if e.hotspot == nil {
		return Hotspot{}, false
	}
	return *e.hotspot, true
}

// ColorCount is the palette size of a BMP entry, 0 when there is none.
func (e *Entry) ColorCount() int {
	if e.format != FormatBMP {
		return 0
	}
	return e.depth.PaletteSize()
}

// RGBA returns a copy of the pixels of a BMP entry, nil for PNG.
func (e *Entry) RGBA() []byte {
	if e.format != FormatBMP {
		return nil
	}
	return append([]byte(nil), e.rgba...)
}

// PNG returns a copy of the stream of a PNG entry, nil for BMP.
func (e *Entry) PNG() []byte {
	if e.format != FormatPNG {
		return nil
	}
	return append([]byte(nil), e.png...)
}

func (e *Entry) String() string {
	s := fmt.Sprintf("%dx%d %s", e.width, e.height, e.format)
	if e.format == FormatBMP {
		s += fmt.Sprintf(" %dbpp", int(e.depth))
	}
	if e.hotspot != nil {
		s += fmt.Sprintf(" hotspot=%d,%d", e.hotspot.X, e.hotspot.Y)
	}
	return s
}

// payload is the on-disk image data of e.
func (e *Entry) payload() ([]byte, error) {
	switch e.format {
	case FormatPNG:
		return e.png, nil
	case FormatBMP:
		return encodeDIB(e.rgba, e.width, e.height, e.depth)
	}
	return nil, invalidEntryf("unknown format %v", e.format)
}
