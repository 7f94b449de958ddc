package ico

import (
	"bytes"
	"image/png"
)

// pngSignature starts every PNG stream.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func isPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// pngSize reads the dimensions from the IHDR chunk without decoding pixels.
func pngSize(data []byte) (width, height int, err error) {
	if !isPNG(data) {
		return 0, 0, FormatError("missing PNG signature")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, formatErrorf("malformed PNG header: %v", err)
	}
	return cfg.Width, cfg.Height, nil
}
