package ico

// BMP/DIB: http://msdn.microsoft.com/en-us/library/windows/desktop/dd183562%28v=vs.85%29.aspx

import (
	"bytes"

	rsrcbin "github.com/akavel/rsrc/binutil"
	rsrcico "github.com/akavel/rsrc/ico"

	"github.com/dentalwings/winicon/binutil"
)

// Depth is the number of bits per pixel of a BMP-encoded entry.
type Depth int

const (
	Depth1  Depth = 1
	Depth4  Depth = 4
	Depth8  Depth = 8
	Depth24 Depth = 24
	Depth32 Depth = 32
)

const (
	sizeOfBitmapInfoHeader = 40

	// Pixels with alpha below this are cut out by the AND mask.
	alphaThreshold = 128
)

// Valid reports whether d is one of the depths a BMP entry may use.
func (d Depth) Valid() bool {
	switch d {
	case Depth1, Depth4, Depth8, Depth24, Depth32:
		return true
	}
	return false
}

// PaletteSize is the number of colour table entries stored for d, or 0 for
// the direct colour depths.
func (d Depth) PaletteSize() int {
	if d.Valid() && d <= Depth8 {
		return 1 << uint(d)
	}
	return 0
}

// dib is a decoded BMP payload.
type dib struct {
	width, height int
	depth         Depth
	rgba          []byte
	maskMissing   bool // 32bpp only
}

func dibSize(width, height int, depth Depth) int {
	colour := binutil.Stride(width, int(depth))
	mask := binutil.Stride(width, 1)
	return sizeOfBitmapInfoHeader + 4*depth.PaletteSize() + height*(colour+mask)
}

// packedIndex returns pixel x of a scanline holding bpp-bit palette indices,
// most significant bits first.
func packedIndex(line []byte, x, bpp int) byte {
	bit := x * bpp
	shift := uint(8 - bpp - bit%8)
	return line[bit/8] >> shift & byte(1<<uint(bpp)-1)
}

func setPackedIndex(line []byte, x, bpp int, v byte) {
	bit := x * bpp
	shift := uint(8 - bpp - bit%8)
	line[bit/8] |= v << shift
}

func decodeDIB(data []byte) (*dib, error) {
	r := binutil.Reader{B: data}
	var hdr rsrcico.BITMAPINFOHEADER
	r.ReadLE(&hdr)
	if r.Err != nil {
		return nil, formatErrorf("truncated bitmap header (%d bytes)", len(data))
	}
	if hdr.Size != sizeOfBitmapInfoHeader {
		return nil, formatErrorf("bitmap header size is %d, must be %d", hdr.Size, sizeOfBitmapInfoHeader)
	}
	if hdr.Width < minDimension || hdr.Width > maxDimension {
		return nil, formatErrorf("bitmap width %d out of range", hdr.Width)
	}
	// The height counts the rows of both the colour data and the AND mask.
	if hdr.Height%2 != 0 {
		return nil, formatErrorf("bitmap height %d is not even", hdr.Height)
	}
	if hdr.Height/2 < minDimension || hdr.Height/2 > maxDimension {
		return nil, formatErrorf("bitmap height %d out of range", hdr.Height/2)
	}
	if hdr.Compression != 0 {
		return nil, formatErrorf("compressed bitmaps are not supported (compression %d)", hdr.Compression)
	}
	depth := Depth(hdr.BitCount)
	if !depth.Valid() {
		return nil, UnsupportedDepthError(hdr.BitCount)
	}

	d := &dib{width: int(hdr.Width), height: int(hdr.Height / 2), depth: depth}
	palette := make([]rsrcico.RGBQUAD, depth.PaletteSize())
	if len(palette) > 0 {
		r.ReadLE(palette)
	}
	stride := binutil.Stride(d.width, int(depth))
	pixels := r.Next(stride * d.height)
	if r.Err != nil {
		return nil, formatErrorf("truncated %dbpp bitmap: %v", depth, r.Err)
	}

	d.rgba = make([]byte, 4*d.width*d.height)
	for row := 0; row < d.height; row++ {
		// Scanlines are stored bottom-up.
		line := pixels[row*stride : (row+1)*stride]
		y := d.height - 1 - row
		out := d.rgba[4*y*d.width : 4*(y+1)*d.width]
		for x := 0; x < d.width; x++ {
			p := out[4*x : 4*x+4]
			switch depth {
			case Depth24:
				p[0], p[1], p[2], p[3] = line[3*x+2], line[3*x+1], line[3*x], 0xff
			case Depth32:
				p[0], p[1], p[2], p[3] = line[4*x+2], line[4*x+1], line[4*x], line[4*x+3]
			default:
				c := palette[packedIndex(line, x, int(depth))]
				p[0], p[1], p[2], p[3] = c.Red, c.Green, c.Blue, 0xff
			}
		}
	}

	maskStride := binutil.Stride(d.width, 1)
	if depth == Depth32 {
		// Alpha comes from the colour data; the mask is only skipped.
		if r.Len() < maskStride*d.height {
			d.maskMissing = true
		} else {
			r.Skip(maskStride * d.height)
		}
		return d, nil
	}
	mask := r.Next(maskStride * d.height)
	if r.Err != nil {
		return nil, formatErrorf("truncated AND mask: %v", r.Err)
	}
	for row := 0; row < d.height; row++ {
		line := mask[row*maskStride : (row+1)*maskStride]
		y := d.height - 1 - row
		for x := 0; x < d.width; x++ {
			if packedIndex(line, x, 1) == 1 {
				d.rgba[4*(y*d.width+x)+3] = 0
			}
		}
	}
	return d, nil
}

// buildPalette collects the distinct colours of rgba in the order they are
// first seen, padded with black to size entries. Alpha is not part of a
// palette colour.
func buildPalette(rgba []byte, size int) ([]rsrcico.RGBQUAD, map[[3]byte]byte, error) {
	palette := make([]rsrcico.RGBQUAD, 0, size)
	lookup := make(map[[3]byte]byte)
	for i := 0; i+3 < len(rgba); i += 4 {
		c := [3]byte{rgba[i], rgba[i+1], rgba[i+2]}
		if _, ok := lookup[c]; ok {
			continue
		}
		if len(palette) == size {
			return nil, nil, invalidEntryf("image has more than %d distinct colours", size)
		}
		lookup[c] = byte(len(palette))
		palette = append(palette, rsrcico.RGBQUAD{Red: c[0], Green: c[1], Blue: c[2]})
	}
	for len(palette) < size {
		palette = append(palette, rsrcico.RGBQUAD{})
	}
	return palette, lookup, nil
}

// countColors returns the number of distinct RGB colours in rgba, stopping
// once limit is exceeded.
func countColors(rgba []byte, limit int) int {
	seen := make(map[[3]byte]struct{})
	for i := 0; i+3 < len(rgba); i += 4 {
		seen[[3]byte{rgba[i], rgba[i+1], rgba[i+2]}] = struct{}{}
		if len(seen) > limit {
			break
		}
	}
	return len(seen)
}

func encodeDIB(rgba []byte, width, height int, depth Depth) ([]byte, error) {
	if !depth.Valid() {
		return nil, UnsupportedDepthError(depth)
	}
	var (
		palette []rsrcico.RGBQUAD
		lookup  map[[3]byte]byte
	)
	if n := depth.PaletteSize(); n > 0 {
		var err error
		palette, lookup, err = buildPalette(rgba, n)
		if err != nil {
			return nil, err
		}
	}

	stride := binutil.Stride(width, int(depth))
	maskStride := binutil.Stride(width, 1)
	var buf bytes.Buffer
	buf.Grow(dibSize(width, height, depth))
	w := rsrcbin.Writer{W: &buf}
	w.WriteLE(rsrcico.BITMAPINFOHEADER{
		Size:      sizeOfBitmapInfoHeader,
		Width:     int32(width),
		Height:    int32(2 * height),
		Planes:    1,
		BitCount:  uint16(depth),
		SizeImage: uint32(height * (stride + maskStride)),
	})
	if len(palette) > 0 {
		w.WriteLE(palette)
	}

	line := make([]byte, stride)
	for row := 0; row < height; row++ {
		y := height - 1 - row
		src := rgba[4*y*width : 4*(y+1)*width]
		for i := range line {
			line[i] = 0
		}
		for x := 0; x < width; x++ {
			p := src[4*x : 4*x+4]
			switch depth {
			case Depth24:
				line[3*x], line[3*x+1], line[3*x+2] = p[2], p[1], p[0]
			case Depth32:
				line[4*x], line[4*x+1], line[4*x+2], line[4*x+3] = p[2], p[1], p[0], p[3]
			default:
				setPackedIndex(line, x, int(depth), lookup[[3]byte{p[0], p[1], p[2]}])
			}
		}
		w.WriteLE(line)
	}

	// The mask is written at 32bpp too, for consumers that ignore alpha.
	mask := make([]byte, maskStride)
	for row := 0; row < height; row++ {
		y := height - 1 - row
		src := rgba[4*y*width : 4*(y+1)*width]
		for i := range mask {
			mask[i] = 0
		}
		for x := 0; x < width; x++ {
			if src[4*x+3] < alphaThreshold {
				setPackedIndex(mask, x, 1, 1)
			}
		}
		w.WriteLE(mask)
	}
	if w.Err != nil {
		return nil, w.Err
	}
	return buf.Bytes(), nil
}
