package ico

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

func init() {
	image.RegisterFormat("ico", "\x00\x00\x01\x00", DecodeImage, DecodeImageConfig)
	image.RegisterFormat("cur", "\x00\x00\x02\x00", DecodeImage, DecodeImageConfig)
}

// Image returns the picture of e. BMP entries give an *image.NRGBA; PNG
// entries are decoded with image/png.
func (e *Entry) Image() (image.Image, error) {
	if e.format == FormatPNG {
		img, err := png.Decode(bytes.NewReader(e.png))
		if err != nil {
			return nil, formatErrorf("malformed PNG: %v", err)
		}
		return img, nil
	}
	return &image.NRGBA{
		Pix:    e.RGBA(),
		Stride: 4 * e.width,
		Rect:   image.Rect(0, 0, e.width, e.height),
	}, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}

func hasPartialAlpha(rgba []byte) bool {
	for i := 3; i < len(rgba); i += 4 {
		if a := rgba[i]; a != 0 && a != 0xff {
			return true
		}
	}
	return false
}

// ChooseDepth picks the smallest BMP depth that stores rgba without loss.
// Alpha other than 0 and 255 needs 32 bits. Images under 512 pixels skip the
// 256-entry palette and use 24 bits instead of 8.
func ChooseDepth(rgba []byte) Depth {
	if hasPartialAlpha(rgba) {
		return Depth32
	}
	switch n := countColors(rgba, 256); {
	case n <= 2:
		return Depth1
	case n <= 16:
		return Depth4
	case n <= 256 && len(rgba)/4 >= 512:
		return Depth8
	}
	return Depth24
}

func imagePixels(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

// FromImageBMP stores img as a bitmap at the depth ChooseDepth picks.
func FromImageBMP(img image.Image, hotspot *Hotspot) (*Entry, error) {
	n, err := imagePixels(img)
	if err != nil {
		return nil, err
	}
	w, h := n.Rect.Dx(), n.Rect.Dy()
	pix := n.Pix[:4*w*h]
	return NewBMPEntry(w, h, pix, ChooseDepth(pix), hotspot)
}

// FromImagePNG stores img as a PNG stream.
func FromImagePNG(img image.Image, hotspot *Hotspot) (*Entry, error) {
	n, err := imagePixels(img)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, n); err != nil {
		return nil, err
	}
	return NewPNGEntry(buf.Bytes(), hotspot)
}

// FromImage stores img as PNG when it has partial transparency or more than
// 64x64 pixels, where PNG is much smaller, and as a bitmap otherwise for
// older readers.
func FromImage(img image.Image, hotspot *Hotspot) (*Entry, error) {
	n, err := imagePixels(img)
	if err != nil {
		return nil, err
	}
	w, h := n.Rect.Dx(), n.Rect.Dy()
	if w*h > 64*64 || hasPartialAlpha(n.Pix[:4*w*h]) {
		return FromImagePNG(n, hotspot)
	}
	return FromImageBMP(n, hotspot)
}

// largest returns the entry with the most pixels, the deeper one on a tie.
func (c *Collection) largest() (*Entry, error) {
	var best *Entry
	score := func(e *Entry) (int, int) {
		if e.format == FormatPNG {
			return e.width * e.height, int(Depth32)
		}
		return e.width * e.height, int(e.depth)
	}
	for _, e := range c.entries {
		if best == nil {
			best = e
			continue
		}
		area, depth := score(e)
		bestArea, bestDepth := score(best)
		if area > bestArea || area == bestArea && depth > bestDepth {
			best = e
		}
	}
	if best == nil {
		return nil, FormatError("no images")
	}
	return best, nil
}

// DecodeImage reads an ICO or CUR file and returns its largest image.
func DecodeImage(r io.Reader) (image.Image, error) {
	c, err := Read(r)
	if err != nil {
		return nil, err
	}
	e, err := c.largest()
	if err != nil {
		return nil, err
	}
	return e.Image()
}

// DecodeImageConfig returns the dimensions and colour model of the image
// DecodeImage would return.
func DecodeImageConfig(r io.Reader) (image.Config, error) {
	c, err := Read(r)
	if err != nil {
		return image.Config{}, err
	}
	e, err := c.largest()
	if err != nil {
		return image.Config{}, err
	}
	if e.format == FormatPNG {
		return png.DecodeConfig(bytes.NewReader(e.png))
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: e.width, Height: e.height}, nil
}
