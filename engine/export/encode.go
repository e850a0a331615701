package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/chewxy/math32"
)

// Gamma is the display gamma applied when quantizing linear color, matching the image program.
const Gamma = 2.2

// Quantize converts one linear channel to an 8-bit display value.
func Quantize(v float32) uint8 {
	if !common.IsFinite(v) {
		return 0
	}
	v = common.Clamp01(v)
	return uint8(math32.Round(math32.Pow(v, 1/Gamma) * 255))
}

// ToImage quantizes a linear buffer into an opaque 8-bit image.
//
// Parameters:
//   - b: the linear buffer
//
// Returns:
//   - *image.NRGBA: the display image
func ToImage(b *Buffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: Quantize(c[0]), G: Quantize(c[1]), B: Quantize(c[2]), A: 255})
		}
	}
	return img
}

// EncodePNG encodes an image as PNG bytes.
//
// Parameters:
//   - img: the image
//
// Returns:
//   - []byte: the PNG file contents
//   - error: an error if encoding fails
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
