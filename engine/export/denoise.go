package export

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/chewxy/math32"
)

// edgeSharpness scales luma differences into neighbor weights; larger keeps edges crisper.
const edgeSharpness = 10

// Denoise blends each pixel toward an edge-aware 3x3 average of its neighborhood. Neighbors are
// weighted by exp(-edgeSharpness*|luma difference|), so flat regions smooth out while silhouettes
// stay sharp. The blend factor is the strength, clamped to [0, 1].
//
// Parameters:
//   - b: the source buffer
//   - strength: the blend factor between original and filtered
//
// Returns:
//   - *Buffer: a new buffer, or b itself when strength is zero
func Denoise(b *Buffer, strength float32) *Buffer {
	strength = common.Clamp01(strength)
	if strength <= 0 || !common.IsFinite(strength) {
		return b
	}
	out := NewBuffer(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			center := b.At(x, y)
			lc := luma(center)
			var sum [3]float32
			var weight float32
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= b.Height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= b.Width {
						continue
					}
					c := b.At(nx, ny)
					w := math32.Exp(-edgeSharpness * math32.Abs(luma(c)-lc))
					sum[0] += c[0] * w
					sum[1] += c[1] * w
					sum[2] += c[2] * w
					weight += w
				}
			}
			// the center always contributes weight 1, so weight > 0
			out.Set(x, y, [3]float32{
				common.Mix(center[0], sum[0]/weight, strength),
				common.Mix(center[1], sum[1]/weight, strength),
				common.Mix(center[2], sum[2]/weight, strength),
			})
		}
	}
	return out
}
