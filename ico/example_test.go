package ico_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/dentalwings/winicon/ico"
)

func Example() {
	rgba := bytes.Repeat([]byte{0xff, 0, 0, 0xff}, 16*16)
	e, err := ico.NewBMPEntry(16, 16, rgba, ico.Depth32, nil)
	if err != nil {
		panic(err)
	}
	c := ico.New(ico.Icon)
	if err := c.Add(e); err != nil {
		panic(err)
	}
	data, err := c.Encode()
	if err != nil {
		panic(err)
	}
	fmt.Println(len(data), "bytes")

	c, err = ico.Decode(data)
	if err != nil {
		panic(err)
	}
	for _, e := range c.Entries() {
		fmt.Println(c.Type(), e)
	}
	// Output:
	// 1150 bytes
	// icon 16x16 bmp 32bpp
}

func ExampleFromImage() {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{0xff, 0xff, 0xff, 0xff})

	e, err := ico.FromImage(img, &ico.Hotspot{X: 0, Y: 0})
	if err != nil {
		panic(err)
	}
	c := ico.New(ico.Cursor)
	if err := c.Add(e); err != nil {
		panic(err)
	}
	fmt.Println(c.At(0))
	// Output: 32x32 bmp 1bpp hotspot=0,0
}
