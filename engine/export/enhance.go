package export

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/chewxy/math32"
)

// Auto-enhance tuning.
const (
	LowPercentile  = 0.003
	HighPercentile = 0.995
	MinGain        = 0.9
	MaxGain        = 1.12
	CurveAmount    = 0.35
	Vibrance       = 0.25

	histogramBins = 4096
)

var lumaWeights = [3]float32{0.2126, 0.7152, 0.0722}

func luma(c [3]float32) float32 {
	return c[0]*lumaWeights[0] + c[1]*lumaWeights[1] + c[2]*lumaWeights[2]
}

// Percentiles returns the luminance values below which lo and hi of the pixels fall, read from a
// fixed-size histogram spanning [0, max luminance].
//
// Parameters:
//   - b: the linear buffer
//   - lo: the low fraction, e.g. 0.003
//   - hi: the high fraction, e.g. 0.995
//
// Returns:
//   - float32: the low clip point
//   - float32: the high clip point
func Percentiles(b *Buffer, lo, hi float32) (float32, float32) {
	n := b.Width * b.Height
	if n == 0 {
		return 0, 0
	}
	var peak float32
	for i := 0; i < n; i++ {
		peak = max(peak, luma([3]float32{b.Pix[i*3], b.Pix[i*3+1], b.Pix[i*3+2]}))
	}
	if peak <= 0 {
		return 0, 0
	}

	var hist [histogramBins]int
	scale := float32(histogramBins-1) / peak
	for i := 0; i < n; i++ {
		l := luma([3]float32{b.Pix[i*3], b.Pix[i*3+1], b.Pix[i*3+2]})
		bin := int(max(l, 0) * scale)
		hist[min(bin, histogramBins-1)]++
	}

	loCount := int(lo * float32(n))
	hiCount := int(hi * float32(n))
	loVal, hiVal := float32(-1), float32(-1)
	cum := 0
	for bin, c := range hist {
		cum += c
		if loVal < 0 && cum > loCount {
			loVal = float32(bin) / scale
		}
		if hiVal < 0 && cum > hiCount {
			hiVal = float32(bin+1) / scale
			break
		}
	}
	if hiVal < 0 {
		hiVal = peak
	}
	return max(loVal, 0), min(hiVal, peak)
}

// AutoEnhance grades a linear buffer in place: percentile contrast stretch, per-channel white
// balance with gains clamped to [MinGain, MaxGain], a smoothstep contrast curve, then a vibrance
// boost that favors desaturated pixels. Output channels land in [0, 1].
//
// Parameters:
//   - b: the buffer to grade
func AutoEnhance(b *Buffer) {
	n := b.Width * b.Height
	if n == 0 {
		return
	}

	lo, hi := Percentiles(b, LowPercentile, HighPercentile)
	span := hi - lo
	stretch := span > 1e-6

	var mean [3]float64
	for i := 0; i < n; i++ {
		for ch := 0; ch < 3; ch++ {
			v := b.Pix[i*3+ch]
			if stretch {
				v = (v - lo) / span
			}
			v = common.Clamp01(v)
			b.Pix[i*3+ch] = v
			mean[ch] += float64(v)
		}
	}

	gray := (mean[0] + mean[1] + mean[2]) / 3
	gains := [3]float32{1, 1, 1}
	for ch := range gains {
		if mean[ch] > 1e-9 {
			gains[ch] = common.Clamp(float32(gray/mean[ch]), MinGain, MaxGain)
		}
	}

	for i := 0; i < n; i++ {
		c := [3]float32{b.Pix[i*3], b.Pix[i*3+1], b.Pix[i*3+2]}
		for ch := range c {
			v := common.Clamp01(c[ch] * gains[ch])
			c[ch] = common.Mix(v, common.Smoothstep(0, 1, v), CurveAmount)
		}

		hiC := max(c[0], c[1], c[2])
		loC := min(c[0], c[1], c[2])
		sat := float32(0)
		if hiC > 1e-6 {
			sat = (hiC - loC) / hiC
		}
		boost := 1 + Vibrance*(1-sat)
		l := luma(c)
		for ch := range c {
			b.Pix[i*3+ch] = common.Clamp01(l + (c[ch]-l)*boost)
		}
	}
}

// finite reports whether every channel of the buffer is a real number.
func (b *Buffer) finite() bool {
	for _, v := range b.Pix {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}
