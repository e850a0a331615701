package export

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/chewxy/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Watermark appearance.
var (
	WatermarkColor = color.NRGBA{R: 235, G: 248, B: 255, A: 128}

	// MinWatermarkSize is the smallest font size in pixels.
	MinWatermarkSize float32 = 16

	// WatermarkScale is the font size as a fraction of the image height.
	WatermarkScale float32 = 0.03
)

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func watermarkFont() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// WatermarkSize returns the font size used for an image of the given height.
func WatermarkSize(height int) float32 {
	return max(MinWatermarkSize, math32.Round(WatermarkScale*float32(height)))
}

// DrawWatermark composites text, centered and semi-transparent, over img. Empty text is a no-op.
//
// Parameters:
//   - img: the image to draw on
//   - text: the watermark string
//
// Returns:
//   - error: an error if the font cannot be loaded
func DrawWatermark(img *image.NRGBA, text string) error {
	if text == "" {
		return nil
	}
	f, err := watermarkFont()
	if err != nil {
		return fmt.Errorf("failed to parse watermark font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(WatermarkSize(img.Bounds().Dy())),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create watermark face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(WatermarkColor),
		Face: face,
	}
	b := img.Bounds()
	advance := d.MeasureString(text)
	m := face.Metrics()
	x := fixed.I(b.Min.X+b.Dx()/2) - advance/2
	y := fixed.I(b.Min.Y+b.Dy()/2) + (m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)
	return nil
}
