package binutil

// Align4 rounds n up to the next multiple of 4, the row alignment of DIB
// scanlines.
func Align4(n int) int {
	return (n + 3) &^ 3
}

// RowBytes is the number of bytes needed to hold width pixels of bpp bits,
// without padding.
func RowBytes(width, bpp int) int {
	return (width*bpp + 7) / 8
}

// Stride is the padded size of one DIB scanline.
func Stride(width, bpp int) int {
	return Align4(RowBytes(width, bpp))
}
